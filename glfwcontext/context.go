package glfwcontext

import (
	"log"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	options "github.com/richinsley/goprocedural/options"
)

// Context owns the viewer window and its GL context.
type Context struct {
	window *glfw.Window
	// A map to store functions to be called on key presses.
	keyCallbacks map[glfw.Key]func()
}

// New creates and initializes a new GLFW window and returns a Context object.
func New(opts *options.Options) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.StencilBits, 8)

	win, err := glfw.CreateWindow(*opts.Width, *opts.Height, "goprocedural", nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{
		window:       win,
		keyCallbacks: make(map[glfw.Key]func()),
	}
	win.SetKeyCallback(c.glfwKeyCallback)
	return c, nil
}

// RegisterKeyCallback registers f to run when key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
	if action == glfw.Press {
		if callback, ok := c.keyCallbacks[key]; ok {
			callback()
		}
	}
}

// SetTitle replaces the window title.
func (c *Context) SetTitle(title string) {
	c.window.SetTitle(title)
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// InitGraphics initializes GLFW. Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts down GLFW. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}
