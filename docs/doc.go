// Package docs provides generated OpenAPI documentation.
//
// bookreader API
//
//	@title			bookreader API
//	@version		1.0
//	@description	Virtualized document reader API for hosting paginated reading sessions.
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	API Support
//	@contact.url	https://github.com/byte-squad-abac/bookreader
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8590
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/bookreader/serve.go -o ./swagger --parseDependency --parseInternal
