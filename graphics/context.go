package graphics

// Context is the window surface a renderer draws into.
type Context interface {
	MakeCurrent()
	ShouldClose() bool
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
	// SetTitle reports viewer state, e.g. while a material is loading.
	SetTitle(title string)
}
