package generate

import "github.com/mkosieradzki/protogen/internal/ir"

type OutputFile struct {
	Path    string
	Content []byte
}

type Options struct {
	Namespace string
	CsOut     string
}

type Generator interface {
	Name() string
	Generate(files []ir.File, options Options) ([]OutputFile, error)
}
