// Package window handles SDL2 window and OpenGL context creation.
package window

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/openviz/vrbridge/internal/logger"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title  string
	Width  int
	Height int
	X      int
	Y      int
}

// Surface is the companion desktop window behind the headset: an OpenGL
// context plus the mirror view the compositor output is blitted into.
type Surface interface {
	MakeCurrent() error
	IsCurrent() bool
	SwapBuffers()
	SetSize(width, height int)
	SetPosition(x, y int)
	SetTitle(title string)
	Size() (int, int)
	Destroy()
}

// SDLSurface wraps an SDL2 window and its OpenGL context.
type SDLSurface struct {
	sdlWindow *sdl.Window
	glContext sdl.GLContext
}

// New creates the companion window with an OpenGL 4.1 core context. The
// swap interval is forced to 0: frame pacing belongs to the VR compositor,
// not the desktop display.
func New(cfg Config) (*SDLSurface, error) {
	s := &SDLSurface{}

	logger.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_TIMER); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// Set OpenGL attributes BEFORE creating the window.
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)

	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	// Eye framebuffers carry their own multisampling; the default
	// framebuffer only ever receives resolved blits.
	sdl.GLSetAttribute(sdl.GL_MULTISAMPLEBUFFERS, 0)
	sdl.GLSetAttribute(sdl.GL_MULTISAMPLESAMPLES, 0)

	x := int32(cfg.X)
	y := int32(cfg.Y)
	if x == 0 && y == 0 {
		x = sdl.WINDOWPOS_CENTERED
		y = sdl.WINDOWPOS_CENTERED
	}

	var err error
	s.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		x,
		y,
		int32(cfg.Width),
		int32(cfg.Height),
		sdl.WINDOW_OPENGL|sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	s.glContext, err = s.sdlWindow.GLCreateContext()
	if err != nil {
		s.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	if err := sdl.GLSetSwapInterval(0); err != nil {
		logger.Warn("failed to disable vsync", zap.Error(err))
	}

	logger.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
	)

	return s, nil
}

// MakeCurrent binds the window's OpenGL context to the calling thread.
func (s *SDLSurface) MakeCurrent() error {
	if s.IsCurrent() {
		return nil
	}
	return s.sdlWindow.GLMakeCurrent(s.glContext)
}

// IsCurrent reports whether this window's context is current on the
// calling thread.
func (s *SDLSurface) IsCurrent() bool {
	return sdl.GLGetCurrentContext() == s.glContext
}

// SwapBuffers swaps the OpenGL buffers.
func (s *SDLSurface) SwapBuffers() {
	s.sdlWindow.GLSwap()
}

// SetSize resizes the window.
func (s *SDLSurface) SetSize(width, height int) {
	s.sdlWindow.SetSize(int32(width), int32(height))
}

// SetPosition moves the window.
func (s *SDLSurface) SetPosition(x, y int) {
	s.sdlWindow.SetPosition(int32(x), int32(y))
}

// SetTitle sets the window title.
func (s *SDLSurface) SetTitle(title string) {
	s.sdlWindow.SetTitle(title)
}

// Size returns the current window size.
func (s *SDLSurface) Size() (int, int) {
	width, height := s.sdlWindow.GetSize()
	return int(width), int(height)
}

// Destroy tears down the context, the window, and SDL itself.
func (s *SDLSurface) Destroy() {
	logger.Info("closing window")

	if s.glContext != nil {
		sdl.GLDeleteContext(s.glContext)
		s.glContext = nil
	}
	if s.sdlWindow != nil {
		s.sdlWindow.Destroy()
		s.sdlWindow = nil
	}

	sdl.Quit()
}
