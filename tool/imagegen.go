package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrelay/connector"
	"github.com/hupe1980/agentrelay/internal/util"
)

// NewImageGenTool returns the generate_image tool. The provider's image
// reference is wrapped in an HTML img tag so chat front-ends render it
// inline; provider failures degrade to a text response.
func NewImageGenTool(provider connector.ImageProvider) *FunctionTool {
	return NewFunctionTool(
		"generate_image",
		"Generate an image if needed.",
		util.ObjectSchema(map[string]any{
			"prompt": util.StringParam("Generate an image based on the prompt. Format the response in HTML to display the image."),
		}, "prompt"),
		func(ctx context.Context, tc *Context, args map[string]any) (any, error) {
			prompt, _ := args["prompt"].(string)
			tc.Notify("<HR><i>Generating image using this prompt: %s</i>", prompt)
			ref, err := provider.GenerateImage(ctx, prompt)
			if err != nil {
				return fmt.Sprintf("Could not process image: %v", err), nil
			}
			return fmt.Sprintf(`<img src="%s" alt="%s" style="max-width: 100%%;">`, ref, prompt), nil
		},
	)
}
