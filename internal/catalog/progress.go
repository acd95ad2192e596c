package catalog

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a catalog build progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Recorder receives album outcomes. *metrics.Metrics satisfies it.
type Recorder interface {
	AlbumParsed()
	AlbumDropped(reason string)
}

type nopRecorder struct{}

func (nopRecorder) AlbumParsed()        {}
func (nopRecorder) AlbumDropped(string) {}
