// Package docs publica a especificação OpenAPI da API para o http-swagger.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var doc string

type staticDoc struct{}

func (staticDoc) ReadDoc() string { return doc }

func init() {
	swag.Register(swag.Name, staticDoc{})
}
