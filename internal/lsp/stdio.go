package lsp

import (
	"io"
	"os"
)

// stdio joins the process standard streams into one connection.
type stdio struct {
	in  io.ReadCloser
	out io.WriteCloser
}

// Stdio returns a connection over os.Stdin and os.Stdout.
func Stdio() io.ReadWriteCloser {
	return stdio{in: os.Stdin, out: os.Stdout}
}

func (s stdio) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s stdio) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s stdio) Close() error {
	inErr := s.in.Close()
	if err := s.out.Close(); err != nil {
		return err
	}
	return inErr
}
