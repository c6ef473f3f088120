package engine

import (
	"fmt"

	"Afterglow/internal/logger"
	"Afterglow/internal/postfx"
	"Afterglow/internal/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

const blitVertexSource = `#version 330 core
layout(location = 0) in vec2 position;
out vec2 uv;
void main() {
    // targets are stored top row first
    uv = vec2(position.x, -position.y) * 0.5 + 0.5;
    gl_Position = vec4(position, 0.0, 1.0);
}
`

const blitFragmentSource = `#version 330 core
in vec2 uv;
out vec4 FragColor;
uniform sampler2D frame;
void main() {
    vec3 c = texture(frame, uv).rgb;
    FragColor = vec4(clamp(c, 0.0, 1.0), 1.0);
}
`

var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

// WindowDisplay uploads each finished frame to a texture and draws it over
// the default framebuffer.
type WindowDisplay struct {
	engine  *Engine
	program uint32
	quadVAO uint32
	quadVBO uint32
	texture uint32

	texWidth, texHeight int
	frameLocation       int32
}

// NewWindowDisplay builds the blit program and quad. The engine must be open.
func NewWindowDisplay(e *Engine) (*WindowDisplay, error) {
	var cleanup renderer.Unwind
	defer cleanup.Unwind()

	vs, err := renderer.GenShader(blitVertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("blit vertex shader: %w", err)
	}
	fs, err := renderer.GenShader(blitFragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return nil, fmt.Errorf("blit fragment shader: %w", err)
	}
	program, err := renderer.GenShaderProgram(vs, fs)
	if err != nil {
		return nil, fmt.Errorf("blit program: %w", err)
	}
	cleanup.Add(func() { gl.DeleteProgram(program) })

	d := &WindowDisplay{engine: e, program: program}
	d.frameLocation = gl.GetUniformLocation(program, gl.Str("frame\x00"))

	gl.GenVertexArrays(1, &d.quadVAO)
	gl.GenBuffers(1, &d.quadVBO)
	cleanup.Add(func() {
		gl.DeleteBuffers(1, &d.quadVBO)
		gl.DeleteVertexArrays(1, &d.quadVAO)
	})
	gl.BindVertexArray(d.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.GenTextures(1, &d.texture)
	gl.BindTexture(gl.TEXTURE_2D, d.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	cleanup.Discard()
	return d, nil
}

// Present draws frame to the window, stretched to the framebuffer.
func (d *WindowDisplay) Present(frame *postfx.Target) {
	if frame == nil || frame.Released() {
		logger.Log.Warn("Skipping present of released frame")
		return
	}

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, d.texture)
	if frame.Width != d.texWidth || frame.Height != d.texHeight {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(frame.Width), int32(frame.Height), 0, gl.RGBA, gl.FLOAT, gl.Ptr(frame.Pix))
		d.texWidth, d.texHeight = frame.Width, frame.Height
		logger.Log.Debug("Display texture resized", zap.Int("width", frame.Width), zap.Int("height", frame.Height))
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(frame.Width), int32(frame.Height), gl.RGBA, gl.FLOAT, gl.Ptr(frame.Pix))
	}

	width, height := d.engine.Size()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.Disable(gl.DEPTH_TEST)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(d.program)
	gl.Uniform1i(d.frameLocation, 0)
	gl.BindVertexArray(d.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (d *WindowDisplay) Cleanup() {
	gl.DeleteTextures(1, &d.texture)
	gl.DeleteBuffers(1, &d.quadVBO)
	gl.DeleteVertexArrays(1, &d.quadVAO)
	gl.DeleteProgram(d.program)
}
