package logging

const (
	// LocalStreamName is the stream for the client's own messages.
	LocalStreamName = "pkg"
	// NativeStreamName receives messages from the native sub-library; it does not propagate.
	NativeStreamName = "pkg.native"
	// WarningsStreamName receives output of the standard library log package.
	WarningsStreamName = "warnings"

	DefaultLogFile         = "pkg.log"
	DefaultTransferLogFile = "pkg.transfer.log"
	DefaultNativeLogFile   = "pkg.native.log"

	// LogMarker is painted into every file stream when it is set up.
	LogMarker = "--- logging initialized ---"

	emptyString = ""
)

const (
	errMsgNilConfig     = "Logging config is nil."
	errMsgNilService    = "Logger service is nil."
	errMsgConfigInvalid = "Logging configuration is invalid."
	errMsgLogDir        = "Failed to create log directory."
	errMsgLogFile       = "Failed to create log file."
)
