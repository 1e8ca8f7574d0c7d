package tui

// Messages for async operations

// FileReadMsg is sent when a file picked in the hash applet has been read.
// Seq identifies the read; completions for anything but the latest read are
// dropped.
type FileReadMsg struct {
	Seq     uint64
	Path    string
	Encoded string
	Size    int64
	Err     error
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// StatusMsg shows a transient line in the status bar.
type StatusMsg struct {
	Text string
}
