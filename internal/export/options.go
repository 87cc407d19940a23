package export

// Format is the container/codec family the exporter writes.
type Format string

const (
	FormatMP4  Format = "mp4"
	FormatWebM Format = "webm"
	FormatGIF  Format = "gif"
)

// Extension returns the output file extension for the format.
func (f Format) Extension() string {
	return string(f)
}

// VideoCodec returns the encoder name the exporter should use.
func (f Format) VideoCodec() string {
	switch f {
	case FormatWebM:
		return "libvpx-vp9"
	case FormatGIF:
		return "gif"
	default:
		return "libx264"
	}
}

// Quality selects the encoder's rate/speed trade-off.
type Quality string

const (
	QualityLow      Quality = "low"
	QualityMedium   Quality = "medium"
	QualityHigh     Quality = "high"
	QualityLossless Quality = "lossless"
)

// CRF returns the constant-rate-factor for H.264/VP9 encoding. Lossless maps
// to CRF 1: visually lossless, and unlike CRF 0 it survives scaling and
// yuv420p.
func (q Quality) CRF() int {
	switch q {
	case QualityLow:
		return 28
	case QualityHigh:
		return 18
	case QualityLossless:
		return 1
	default:
		return 23
	}
}

// H264Preset returns the encoder preset for the quality level.
func (q Quality) H264Preset() string {
	switch q {
	case QualityLow:
		return "faster"
	case QualityHigh:
		return "slow"
	case QualityLossless:
		return "veryslow"
	default:
		return "medium"
	}
}

// Options is the export request a client submits alongside the plan.
type Options struct {
	Format             Format  `json:"format"`
	Quality            Quality `json:"quality"`
	Width              *int    `json:"width,omitempty"`
	Height             *int    `json:"height,omitempty"`
	FPS                *int    `json:"fps,omitempty"`
	OutputPath         string  `json:"outputPath"`
	IncludeCursor      bool    `json:"includeCursor"`
	IncludeWebcam      bool    `json:"includeWebcam"`
	IncludeMicAudio    bool    `json:"includeMicAudio"`
	IncludeSystemAudio bool    `json:"includeSystemAudio"`
}

// Stage names the phase an export is in.
type Stage string

const (
	StagePreparing       Stage = "preparing"
	StageSmoothingCursor Stage = "smoothingCursor"
	StageEncoding        Stage = "encoding"
	StageFinalizing      Stage = "finalizing"
	StageComplete        Stage = "complete"
	StageError           Stage = "error"
)

// Progress is the export progress envelope published to clients.
type Progress struct {
	Percent      float64 `json:"percent"`
	Stage        Stage   `json:"stage"`
	CurrentFrame int64   `json:"currentFrame"`
	TotalFrames  int64   `json:"totalFrames"`
	Message      string  `json:"message,omitempty"`
}

// Encoding reports progress inside the encoding stage: preparation owns the
// first 10 percent, finalizing the last 5.
func Encoding(currentFrame, totalFrames int64) Progress {
	percent := 10.0
	if totalFrames > 0 {
		percent = 10 + float64(currentFrame)/float64(totalFrames)*85
	}
	return Progress{Percent: percent, Stage: StageEncoding, CurrentFrame: currentFrame, TotalFrames: totalFrames}
}

// Preparing is the initial progress value.
func Preparing() Progress {
	return Progress{Stage: StagePreparing}
}

// Finalizing is the fixed progress value while the container is closed.
func Finalizing() Progress {
	return Progress{Percent: 95, Stage: StageFinalizing}
}

// Complete is the terminal success value.
func Complete() Progress {
	return Progress{Percent: 100, Stage: StageComplete}
}

// Failed is the terminal error value.
func Failed(message string) Progress {
	return Progress{Stage: StageError, Message: message}
}
