package tool

import (
	"context"

	"github.com/hupe1980/agentrelay/connector"
	"github.com/hupe1980/agentrelay/internal/util"
)

func weatherParams(what string) map[string]any {
	return util.ObjectSchema(map[string]any{
		"latitude":  util.StringParam("The latitude decimal (-90; 90) of the location to check " + what + "."),
		"longitude": util.StringParam("The longitude decimal (-180; 180) of the location to check " + what + "."),
	}, "latitude", "longitude")
}

// NewWeatherTool returns the get_weather tool reporting current conditions
// via the given provider.
func NewWeatherTool(provider connector.WeatherProvider) *FunctionTool {
	return NewFunctionTool(
		"get_weather",
		"Check the current weather for a location.",
		weatherParams("the current weather"),
		func(ctx context.Context, tc *Context, args map[string]any) (any, error) {
			lat, _ := args["latitude"].(string)
			lon, _ := args["longitude"].(string)
			tc.Notify("<i>Checking the current weather…</i>")
			return provider.Current(ctx, lat, lon)
		},
	)
}

// NewForecastTool returns the get_forecast tool reporting a forecast via the
// given provider.
func NewForecastTool(provider connector.WeatherProvider) *FunctionTool {
	return NewFunctionTool(
		"get_forecast",
		"Check the weather forecast for a location.",
		weatherParams("the weather forecast"),
		func(ctx context.Context, tc *Context, args map[string]any) (any, error) {
			lat, _ := args["latitude"].(string)
			lon, _ := args["longitude"].(string)
			tc.Notify("<i>Checking the weather forecast…</i>")
			return provider.Forecast(ctx, lat, lon)
		},
	)
}
