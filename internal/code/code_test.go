package code

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		op       Opcode
		operands []int
		expected []byte
	}{
		{OpConstant, []int{65534}, []byte{byte(OpConstant), 255, 254}},
		{OpGetLocal, []int{255}, []byte{byte(OpGetLocal), 255}},
		{OpClosure, []int{65534, 255}, []byte{byte(OpClosure), 255, 254, 255}},
		{OpSend, []int{70000, 3}, []byte{byte(OpSend), 0, 1, 17, 112, 3}},
		{OpAdd, nil, []byte{byte(OpAdd)}},
	}

	for _, tt := range tests {
		ins := Make(tt.op, tt.operands...)
		if len(ins) != len(tt.expected) {
			t.Fatalf("%v: wrong length. want=%d got=%d", tt.op, len(tt.expected), len(ins))
		}
		for i, b := range tt.expected {
			if ins[i] != b {
				t.Fatalf("%v: wrong byte at %d. want=%d got=%d", tt.op, i, b, ins[i])
			}
		}
	}
}

func TestReadOperands(t *testing.T) {
	tests := []struct {
		op        Opcode
		operands  []int
		bytesRead int
	}{
		{OpConstant, []int{65535}, 2},
		{OpClosure, []int{65535, 255}, 3},
		{OpSend, []int{4000000000, 2}, 5},
	}

	for _, tt := range tests {
		ins := Make(tt.op, tt.operands...)
		def, ok := Lookup(tt.op)
		if !ok {
			t.Fatalf("definition not found: %v", tt.op)
		}
		got, n := ReadOperands(def, ins[1:])
		if n != tt.bytesRead {
			t.Fatalf("n wrong. want=%d got=%d", tt.bytesRead, n)
		}
		for i, want := range tt.operands {
			if got[i] != want {
				t.Fatalf("operand %d wrong. want=%d got=%d", i, want, got[i])
			}
		}
	}
}

func TestInstructionsString(t *testing.T) {
	var ins Instructions
	ins = append(ins, Make(OpConstant, 1)...)
	ins = append(ins, Make(OpSend, 7, 2)...)
	ins = append(ins, Make(OpPop)...)

	want := "0000 OpConstant 1\n0003 OpSend 7 2\n0009 OpPop\n"
	if ins.String() != want {
		t.Fatalf("disassembly wrong.\nwant=%q\ngot =%q", want, ins.String())
	}
}
