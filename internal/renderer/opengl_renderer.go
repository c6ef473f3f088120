package renderer

import (
	"fmt"
	"strings"

	"Afterglow/internal/logger"
	"Afterglow/internal/postfx"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// OpenGLRenderer draws the scene with the displacement program into an
// offscreen framebuffer and reads the result back into the scene target.
// All methods need the GL context current on the calling thread.
type OpenGLRenderer struct {
	scene        *Scene
	displacement *Displacement
	program      *Shader
	cache        *UniformCache

	fbo, colorTexture, depthBuffer uint32
	width, height                  int
	readback                       []float32
	reportedInactive               bool
}

// NewOpenGLRenderer compiles the displacement program (falling back to the
// plain standard shader if the injected one fails to build) and uploads the model.
func NewOpenGLRenderer(scene *Scene, displacement *Displacement) (*OpenGLRenderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("OpenGL initialization failed: %w", err)
	}

	rend := &OpenGLRenderer{scene: scene, displacement: displacement}
	rend.program = displacement.Program
	if err := rend.program.Compile(); err != nil {
		logger.Log.Error("Displacement program failed to build, using standard shader", zap.Error(err))
		rend.displacement.Degraded = true
		rend.displacement.Err = err
		rend.program = StandardShader()
		if err := rend.program.Compile(); err != nil {
			return nil, err
		}
	}
	rend.cache = NewUniformCache(rend.program.program)

	if scene.Model != nil {
		rend.AddModel(scene.Model)
	}
	if Debug {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}
	logger.Log.Info("OpenGL render initialized", zap.String("program", rend.program.Name()))
	return rend, nil
}

func (rend *OpenGLRenderer) AddModel(model *Model) {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(model.InterleavedData)*4, gl.Ptr(model.InterleavedData), gl.STATIC_DRAW)

	var ebo uint32
	gl.GenBuffers(1, &ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(model.Faces)*4, gl.Ptr(model.Faces), gl.STATIC_DRAW)

	stride := int32((8) * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)

	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.VertexAttribPointer(2, 3, gl.FLOAT, false, stride, gl.PtrOffset(5*4))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	model.VAO = vao
	model.VBO = vbo
	model.EBO = ebo
}

// ensureFramebuffer (re)creates the offscreen color and depth attachments when
// the target size changes.
func (rend *OpenGLRenderer) ensureFramebuffer(width, height int) error {
	if rend.fbo != 0 && rend.width == width && rend.height == height {
		return nil
	}
	rend.deleteFramebuffer()

	var unwind Unwind
	defer unwind.Unwind()

	var fbo, tex, rbo uint32
	gl.GenFramebuffers(1, &fbo)
	unwind.Add(func() { gl.DeleteFramebuffers(1, &fbo) })
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)

	gl.GenTextures(1, &tex)
	unwind.Add(func() { gl.DeleteTextures(1, &tex) })
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(width), int32(height), 0, gl.RGBA, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)

	gl.GenRenderbuffers(1, &rbo)
	unwind.Add(func() { gl.DeleteRenderbuffers(1, &rbo) })
	gl.BindRenderbuffer(gl.RENDERBUFFER, rbo)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, rbo)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("%w: framebuffer %dx%d incomplete (status 0x%x)", postfx.ErrBufferAllocation, width, height, status)
	}
	unwind.Discard()

	rend.fbo, rend.colorTexture, rend.depthBuffer = fbo, tex, rbo
	rend.width, rend.height = width, height
	rend.readback = make([]float32, width*height*4)
	logger.Log.Debug("Scene framebuffer created", zap.Int("width", width), zap.Int("height", height))
	return nil
}

func (rend *OpenGLRenderer) deleteFramebuffer() {
	if rend.fbo == 0 {
		return
	}
	gl.DeleteFramebuffers(1, &rend.fbo)
	gl.DeleteTextures(1, &rend.colorTexture)
	gl.DeleteRenderbuffers(1, &rend.depthBuffer)
	rend.fbo, rend.colorTexture, rend.depthBuffer = 0, 0, 0
}

func (rend *OpenGLRenderer) RenderScene(dst *postfx.Target) {
	if err := rend.ensureFramebuffer(dst.Width, dst.Height); err != nil {
		logger.Log.Error("Scene framebuffer unavailable", zap.Error(err))
		dst.Clear()
		return
	}
	s := rend.scene
	s.Camera.FitViewport(dst.Width, dst.Height)

	gl.BindFramebuffer(gl.FRAMEBUFFER, rend.fbo)
	gl.Viewport(0, 0, int32(dst.Width), int32(dst.Height))
	gl.ClearColor(s.Background.X(), s.Background.Y(), s.Background.Z(), 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthMask(true)

	if s.Model != nil && s.modelVisible(rend.displacement.Reach()) {
		rend.program.Use()
		rend.setCommonUniforms(s)
		for _, u := range rend.program.Uniforms() {
			u.Apply(rend.cache)
		}

		gl.BindVertexArray(s.Model.VAO)
		gl.DrawElements(gl.TRIANGLES, int32(len(s.Model.Faces)), gl.UNSIGNED_INT, nil)
		gl.BindVertexArray(0)

		if !rend.reportedInactive {
			rend.reportedInactive = true
			if inactive := rend.cache.Inactive(); len(inactive) > 0 {
				logger.Log.Debug("Uniforms not used by program",
					zap.String("program", rend.program.Name()), zap.Strings("names", inactive))
			}
		}
	}
	gl.Disable(gl.DEPTH_TEST)

	gl.ReadPixels(0, 0, int32(dst.Width), int32(dst.Height), gl.RGBA, gl.FLOAT, gl.Ptr(rend.readback))
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	// GL rows are bottom-up; targets are top-down.
	row := dst.Width * 4
	for y := 0; y < dst.Height; y++ {
		src := rend.readback[(dst.Height-1-y)*row : (dst.Height-y)*row]
		copy(dst.Pix[y*row:(y+1)*row], src)
	}
}

// setCommonUniforms sets the camera, model and light uniforms of the standard shader
func (rend *OpenGLRenderer) setCommonUniforms(s *Scene) {
	viewProjection := s.Camera.GetViewProjection()
	modelMatrix := s.Model.Matrix()
	rend.cache.SetMat4("viewProjection", viewProjection)
	rend.cache.SetMat4("model", modelMatrix)

	material := s.Model.Material
	if material == nil {
		material = DefaultMaterial
	}
	rend.cache.SetVec3("diffuseColor", material.DiffuseColor)

	if s.Light != nil {
		rend.cache.SetVec3("light.position", s.Light.Position)
		rend.cache.SetVec3("light.color", s.Light.Color)
		rend.cache.SetFloat("light.intensity", s.Light.Intensity)
	}
	rend.cache.SetVec3("ambientColor", s.Ambient.Color)
	rend.cache.SetFloat("ambientIntensity", s.Ambient.Intensity)
}

func (rend *OpenGLRenderer) Cleanup() {
	if model := rend.scene.Model; model != nil && model.VAO != 0 {
		gl.DeleteVertexArrays(1, &model.VAO)
		gl.DeleteBuffers(1, &model.VBO)
		gl.DeleteBuffers(1, &model.EBO)
		model.VAO, model.VBO, model.EBO = 0, 0, 0
	}
	rend.deleteFramebuffer()
	rend.program.Delete()
	rend.cache.Clear()
}

// GenShader compiles one stage. The source does not need a trailing NUL.
func GenShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	cSources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, cSources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		logger.Log.Error("Failed to compile", zap.Uint32("shader type:", shaderType), zap.String("log", log))
		return 0, fmt.Errorf("compile shader type 0x%x: %s", shaderType, strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

// GenShaderProgram links the two stages and deletes them.
func GenShaderProgram(vertexShader, fragmentShader uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DetachShader(program, vertexShader)
	gl.DeleteShader(vertexShader)
	gl.DetachShader(program, fragmentShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		logger.Log.Error("Failed to link program", zap.String("log", log))
		return 0, fmt.Errorf("link program: %s", strings.TrimRight(log, "\x00"))
	}
	return program, nil
}
