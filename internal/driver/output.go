package driver

import (
	"bytes"
	"os"
	"path/filepath"

	"chime/internal/diag"
	"chime/internal/ir"
)

// WriteResult materializes one compiled target under outDir: the
// msgpack payload as <name>.ir.mp and a human-readable dump as
// <name>.ir.txt. I/O problems land in the result's bag.
func WriteResult(outDir string, res *Result) bool {
	if res.Payload == nil {
		return false
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		res.Bag.Add(diag.Errorf(diag.IOWriteFileError, outDir, "%v", err))
		return false
	}

	var packed bytes.Buffer
	if err := res.Payload.Encode(&packed); err != nil {
		res.Bag.Add(diag.Errorf(diag.IOWriteFileError, res.Name, "encode payload: %v", err))
		return false
	}
	mpPath := filepath.Join(outDir, res.Name+".ir.mp")
	if err := os.WriteFile(mpPath, packed.Bytes(), 0o644); err != nil {
		res.Bag.Add(diag.Errorf(diag.IOWriteFileError, mpPath, "%v", err))
		return false
	}

	var text bytes.Buffer
	if err := ir.Dump(&text, res.Payload.Decls, ir.DumpOptions{}); err != nil {
		res.Bag.Add(diag.Errorf(diag.IOWriteFileError, res.Name, "dump: %v", err))
		return false
	}
	txtPath := filepath.Join(outDir, res.Name+".ir.txt")
	if err := os.WriteFile(txtPath, text.Bytes(), 0o644); err != nil {
		res.Bag.Add(diag.Errorf(diag.IOWriteFileError, txtPath, "%v", err))
		return false
	}
	return true
}
