package code

import "encoding/binary"

type Opcode byte

const (
	OpConstant Opcode = iota // push constants[operand]
	OpPop

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	OpTrue
	OpFalse
	OpNil

	OpEqual
	OpNotEqual
	OpGreaterThan
	OpGreaterEqual
	OpLessThan
	OpLessEqual

	OpMinus
	OpNot

	OpJumpNotTruthy   // operand: jump address
	OpJump            // operand: jump address
	OpJumpFalseOrPop  // `and`: keep left and jump if falsy, else pop it
	OpJumpTruthyOrPop // `or`: keep left and jump if truthy, else pop it

	OpSetGlobal // operand: global slot (2 bytes)
	OpGetGlobal // operand: global slot (2 bytes)
	OpSetLocal  // operand: local slot (1 byte)
	OpGetLocal  // operand: local slot (1 byte)
	OpGetFree   // operand: free-variable slot (1 byte)
	OpGetBuiltin

	OpCurrentClosure
	OpClosure // operands: function constant (2), free count (1)
	OpCall    // operand: argc (1 byte)
	OpReturnValue
	OpReturn

	OpSend // operands: host operation code (4), argc (1)

	OpArray     // operand: element count (2 bytes)
	OpIndex     // no operands
	OpSetIndex  // no operands (expects: left, index, value)
	OpGetMember // operand: name constant (2 bytes)

	OpTry    // operand: catch address (2 bytes)
	OpEndTry // no operands
	OpThrow  // no operands
)

type Instructions []byte

// SourcePos maps the instruction starting at Offset back to a source location.
type SourcePos struct {
	Offset int
	Line   int
	Col    int
}

type Definition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]*Definition{
	OpConstant:        {"OpConstant", []int{2}},
	OpPop:             {"OpPop", nil},
	OpAdd:             {"OpAdd", nil},
	OpSub:             {"OpSub", nil},
	OpMul:             {"OpMul", nil},
	OpDiv:             {"OpDiv", nil},
	OpMod:             {"OpMod", nil},
	OpTrue:            {"OpTrue", nil},
	OpFalse:           {"OpFalse", nil},
	OpNil:             {"OpNil", nil},
	OpEqual:           {"OpEqual", nil},
	OpNotEqual:        {"OpNotEqual", nil},
	OpGreaterThan:     {"OpGreaterThan", nil},
	OpGreaterEqual:    {"OpGreaterEqual", nil},
	OpLessThan:        {"OpLessThan", nil},
	OpLessEqual:       {"OpLessEqual", nil},
	OpMinus:           {"OpMinus", nil},
	OpNot:             {"OpNot", nil},
	OpJumpNotTruthy:   {"OpJumpNotTruthy", []int{2}},
	OpJump:            {"OpJump", []int{2}},
	OpJumpFalseOrPop:  {"OpJumpFalseOrPop", []int{2}},
	OpJumpTruthyOrPop: {"OpJumpTruthyOrPop", []int{2}},
	OpSetGlobal:       {"OpSetGlobal", []int{2}},
	OpGetGlobal:       {"OpGetGlobal", []int{2}},
	OpSetLocal:        {"OpSetLocal", []int{1}},
	OpGetLocal:        {"OpGetLocal", []int{1}},
	OpGetFree:         {"OpGetFree", []int{1}},
	OpGetBuiltin:      {"OpGetBuiltin", []int{1}},
	OpCurrentClosure:  {"OpCurrentClosure", nil},
	OpClosure:         {"OpClosure", []int{2, 1}},
	OpCall:            {"OpCall", []int{1}},
	OpReturnValue:     {"OpReturnValue", nil},
	OpReturn:          {"OpReturn", nil},
	OpSend:            {"OpSend", []int{4, 1}},
	OpArray:           {"OpArray", []int{2}},
	OpIndex:           {"OpIndex", nil},
	OpSetIndex:        {"OpSetIndex", nil},
	OpGetMember:       {"OpGetMember", []int{2}},
	OpTry:             {"OpTry", []int{2}},
	OpEndTry:          {"OpEndTry", nil},
	OpThrow:           {"OpThrow", nil},
}

func Lookup(op Opcode) (*Definition, bool) {
	def, ok := definitions[op]
	return def, ok
}

func Make(op Opcode, operands ...int) Instructions {
	def, ok := definitions[op]
	if !ok {
		return Instructions{}
	}
	insLen := 1
	for _, w := range def.OperandWidths {
		insLen += w
	}

	ins := make([]byte, insLen)
	ins[0] = byte(op)

	offset := 1
	for i, o := range operands {
		w := def.OperandWidths[i]
		switch w {
		case 1:
			ins[offset] = byte(o)
		case 2:
			binary.BigEndian.PutUint16(ins[offset:], uint16(o))
		case 4:
			binary.BigEndian.PutUint32(ins[offset:], uint32(o))
		}
		offset += w
	}
	return ins
}

func ReadUint16(ins Instructions) uint16 {
	return binary.BigEndian.Uint16(ins)
}

func ReadUint32(ins Instructions) uint32 {
	return binary.BigEndian.Uint32(ins)
}
