// Package translator wraps the process-wide GLSL translator used to turn
// WebGL2 (ESSL 3.00) procedural programs into desktop GLSL.
package translator

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	gst "github.com/richinsley/goshadertranslator"
)

var (
	translator     *gst.ShaderTranslator
	translatorErr  error
	translatorOnce sync.Once
)

// GetTranslator creates the translator on first use.
func GetTranslator() (*gst.ShaderTranslator, error) {
	translatorOnce.Do(func() {
		translator, translatorErr = gst.NewShaderTranslator(context.Background())
		if translatorErr != nil {
			translatorErr = errors.Wrap(translatorErr, "failed to create shader translator")
		}
	})
	return translator, translatorErr
}

// Translated is one translated stage: the desktop code and the names the
// translator gave to the source's variables.
type Translated struct {
	Code        string
	MappedNames map[string]string
}

// MappedName returns the translated name of a source variable, or name
// itself when the translator kept it.
func (t *Translated) MappedName(name string) string {
	if mapped, ok := t.MappedNames[name]; ok && mapped != "" {
		return mapped
	}
	return name
}

// Translate converts ESSL source for stage ("vertex" or "fragment") to GLSL 4.10.
func Translate(source, stage string) (*Translated, error) {
	t, err := GetTranslator()
	if err != nil {
		return nil, err
	}
	out, err := t.TranslateShader(source, stage, gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, errors.Wrapf(err, "%s shader translation failed", stage)
	}
	result := &Translated{
		Code:        out.Code,
		MappedNames: make(map[string]string, len(out.Variables)),
	}
	for name, v := range out.Variables {
		result.MappedNames[name] = v.MappedName
	}
	return result, nil
}

// Identity is the result for source compiled as-is.
func Identity(source string) *Translated {
	return &Translated{Code: source, MappedNames: map[string]string{}}
}
