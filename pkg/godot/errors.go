package godot

import "fmt"

// ExportIOError はファイル入出力に起因するエクスポート失敗です。
// エクスポートは全体がひとつの単位として中断され、部分出力は残りません。
type ExportIOError struct {
	Path string
	Err  error
}

func (e *ExportIOError) Error() string {
	return fmt.Sprintf("export I/O failed at %s: %v", e.Path, e.Err)
}

func (e *ExportIOError) Unwrap() error { return e.Err }

// ExportFormatError はアセットが直列化の前提を満たさないことを示します。
type ExportFormatError struct {
	Reason string
	Err    error
}

func (e *ExportFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("export format error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("export format error: %s", e.Reason)
}

func (e *ExportFormatError) Unwrap() error { return e.Err }
