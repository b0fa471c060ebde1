package handler

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"

	"scenariogen.app/server/internal/http/dto"
)

var (
	requestSchema     *jsonschema.Schema
	requestSchemaOnce sync.Once
)

// Schema serves the JSON Schema of the generate request body.
func Schema(c *gin.Context) {
	requestSchemaOnce.Do(func() {
		reflector := jsonschema.Reflector{
			AllowAdditionalProperties: false,
			DoNotReference:            true,
		}
		requestSchema = reflector.Reflect(&dto.GenerateScenarioRequest{})
		requestSchema.Title = "GenerateScenarioRequest"
		requestSchema.Description = "Element or selection description used to generate a Gherkin scenario or a bug report."
	})
	c.JSON(http.StatusOK, requestSchema)
}
