// Package model defines the core domain models used throughout the application.
package model

// FailureKind classifies why a file could not be handled.
type FailureKind string

// Failure kind constants.
const (
	// FailureUnreadablePDF marks a file the text extractor could not parse.
	FailureUnreadablePDF FailureKind = "UNREADABLE_PDF"
	// FailureOCRPipeline marks a failed or timed out OCR engine run.
	FailureOCRPipeline FailureKind = "OCR_PIPELINE"
	// FailureOutputPath marks an output path that would overwrite the input
	// or could not be written.
	FailureOutputPath FailureKind = "OUTPUT_PATH"
	// FailureInterrupted marks a run cut short by cancellation of the batch.
	FailureInterrupted FailureKind = "INTERRUPTED"
)

// ProcessResult is the outcome of one attempted OCR operation.
// Exactly one of success or failure holds. A skipped result is a
// successful one for which no work was performed.
type ProcessResult struct {
	InputPath  string      `json:"input_path" yaml:"input_path"`
	OutputPath string      `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Error      string      `json:"error,omitempty" yaml:"error,omitempty"`
	Kind       FailureKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Success    bool        `json:"success" yaml:"success"`
	Skipped    bool        `json:"skipped" yaml:"skipped"`
}

// Processed returns the result of a file that was OCR'd into output.
func Processed(input, output string) ProcessResult {
	return ProcessResult{
		InputPath:  input,
		OutputPath: output,
		Success:    true,
	}
}

// Skipped returns the result of a file whose output already existed.
func Skipped(input, output string) ProcessResult {
	return ProcessResult{
		InputPath:  input,
		OutputPath: output,
		Success:    true,
		Skipped:    true,
	}
}

// Failed returns the result of a file that could not be processed.
func Failed(input string, kind FailureKind, err error) ProcessResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return ProcessResult{
		InputPath: input,
		Error:     msg,
		Kind:      kind,
	}
}

// Failure reports whether the result is a failed attempt.
func (r ProcessResult) Failure() bool {
	return !r.Success
}
