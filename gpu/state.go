package gpu

type CullMode int

const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

type ComparisonFunction int

const (
	Never ComparisonFunction = iota
	Less
	Equal
	LessEqual
	Greater
	NotEqual
	GreaterEqual
	Always
)

type BlendArg int

const (
	Zero BlendArg = iota
	One
	SrcAlpha
	InvSrcAlpha
	FactorAlpha
)

type BlendOp int

const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
)

// BlendFunction describes color and alpha blending.
type BlendFunction struct {
	Enabled   bool
	SrcColor  BlendArg
	OpColor   BlendOp
	DestColor BlendArg
	SrcAlpha  BlendArg
	OpAlpha   BlendOp
	DestAlpha BlendArg
}

type StencilTest struct {
	Enabled   bool
	Function  ComparisonFunction
	Reference uint8
	ReadMask  uint8
	WriteMask uint8
}

// State is the fixed-function state a pipeline is drawn with.
type State struct {
	CullMode   CullMode
	DepthTest  bool
	DepthWrite bool
	DepthFunc  ComparisonFunction
	Blend      BlendFunction
	Stencil    StencilTest
	// AntialiasedLines is set by stencil hooks that draw outlines.
	AntialiasedLines bool
}

func NewState() *State {
	return &State{CullMode: CullBack, DepthTest: true, DepthWrite: true, DepthFunc: Less}
}

func (s *State) SetCullMode(mode CullMode) {
	s.CullMode = mode
}

func (s *State) SetDepthTest(enabled, write bool, fn ComparisonFunction) {
	s.DepthTest = enabled
	s.DepthWrite = write
	s.DepthFunc = fn
}

func (s *State) SetBlendFunction(enabled bool, srcColor BlendArg, opColor BlendOp, destColor BlendArg, srcAlpha BlendArg, opAlpha BlendOp, destAlpha BlendArg) {
	s.Blend = BlendFunction{
		Enabled:   enabled,
		SrcColor:  srcColor,
		OpColor:   opColor,
		DestColor: destColor,
		SrcAlpha:  srcAlpha,
		OpAlpha:   opAlpha,
		DestAlpha: destAlpha,
	}
}
