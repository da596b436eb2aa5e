// Package docs provides generated OpenAPI documentation.
//
// Litmind API
//
//	@title			Litmind API
//	@version		1.0
//	@description	Book discovery and assisted reading API: catalog search, page translation, scene images, and chat.
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	API Support
//	@contact.url	https://github.com/haragam22/litmind
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/litmind/serve.go -o ./swagger --parseDependency --parseInternal
