// Package endpoints defines every HTTP operation the server exposes. Each
// endpoint is both a route and a CLI command via the api.Endpoint interface.
package endpoints

import (
	"github.com/byte-squad-abac/bookreader/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},

		// Document endpoints
		&UploadDocumentEndpoint{},
		&ListDocumentsEndpoint{},
		&GetDocumentEndpoint{},
		&DeleteDocumentEndpoint{},

		// Reader endpoints
		&ReaderStateEndpoint{},
		&ScrollEndpoint{},
		&NavigateEndpoint{},
		&WindowEndpoint{},
		&PreloadEndpoint{},
		&ZoomEndpoint{},
		&ProgressEndpoint{},

		// Session endpoints
		&ListSessionsEndpoint{},
		&StartSessionEndpoint{},
		&GetSessionEndpoint{},
		&TickSessionEndpoint{},
		&EndSessionEndpoint{},

		// Swagger/OpenAPI endpoints
		&SwaggerEndpoint{},
		&SwaggerUIEndpoint{},
	}
}
