// Package record renders the composer headless at a fixed frame rate and
// encodes the presented frames.
package record

import (
	"errors"
	"fmt"
	"io"

	"Afterglow/internal/config"
	"Afterglow/internal/logger"
	"Afterglow/internal/postfx"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// FFmpegDisplay pipes every presented frame to an ffmpeg process as raw rgb24
// video. The frame size is fixed when the display is created.
type FFmpegDisplay struct {
	width, height int
	pipe          *io.PipeWriter
	buf           []byte
	done          chan error
	err           error
	frames        int
	closed        bool
}

// encoderArgs returns the ffmpeg input and output arguments for cfg.
func encoderArgs(cfg config.RecordConfig, width, height int) (inputArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgb24",
		"s":         fmt.Sprintf("%dx%d", width, height),
		"framerate": cfg.FPS,
	}
	outputArgs = ffmpeg.KwArgs{
		"c:v":     cfg.Codec,
		"pix_fmt": cfg.PixFmt,
	}
	if cfg.CRF > 0 {
		outputArgs["crf"] = cfg.CRF
	}
	return inputArgs, outputArgs
}

// NewFFmpegDisplay starts ffmpeg writing to cfg.Output.
func NewFFmpegDisplay(cfg config.RecordConfig, width, height int) (*FFmpegDisplay, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("record size %dx%d must be positive", width, height)
	}
	if cfg.Output == "" {
		return nil, errors.New("record output path is empty")
	}

	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := encoderArgs(cfg, width, height)

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(cfg.Output, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()

	d := &FFmpegDisplay{
		width:  width,
		height: height,
		pipe:   pipeWriter,
		buf:    make([]byte, 0, width*height*3),
		done:   make(chan error, 1),
	}
	go func() {
		err := ffmpegCmd.Run()
		// unblock a writer if ffmpeg exits early
		pipeReader.CloseWithError(fmt.Errorf("ffmpeg exited: %v", err))
		d.done <- err
	}()

	logger.Log.Info("Recording started",
		zap.String("output", cfg.Output),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("fps", cfg.FPS),
		zap.String("codec", cfg.Codec))
	return d, nil
}

// Present writes frame to the encoder. After the first write error further
// frames are dropped; the error is reported by Err and Close.
func (d *FFmpegDisplay) Present(frame *postfx.Target) {
	if d.err != nil || d.closed {
		return
	}
	if frame.Width != d.width || frame.Height != d.height {
		d.err = fmt.Errorf("frame %dx%d does not match recording size %dx%d", frame.Width, frame.Height, d.width, d.height)
		return
	}
	d.buf = frame.AppendRGB24(d.buf[:0])
	if _, err := d.pipe.Write(d.buf); err != nil {
		d.err = fmt.Errorf("write frame %d: %w", d.frames, err)
		logger.Log.Error("Failed to write frame to ffmpeg", zap.Int("frame", d.frames), zap.Error(err))
		return
	}
	d.frames++
}

// Err returns the first write error, if any.
func (d *FFmpegDisplay) Err() error {
	return d.err
}

// Frames returns the number of frames written.
func (d *FFmpegDisplay) Frames() int {
	return d.frames
}

// Close ends the stream and waits for ffmpeg to finish.
func (d *FFmpegDisplay) Close() error {
	if d.closed {
		return d.err
	}
	d.closed = true
	d.pipe.Close()
	if err := <-d.done; err != nil && d.err == nil {
		d.err = fmt.Errorf("ffmpeg: %w", err)
	}
	logger.Log.Info("Recording finished", zap.Int("frames", d.frames), zap.Error(d.err))
	return d.err
}
