// Package demo registers the demonstration tools: greeting, translate,
// test and weather.
package demo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wagiedev/wstools-go/internal/tool"
)

// TranslatePrompt prefixes the message returned by translate.
const TranslatePrompt = "请将下面的话语翻译成中文：\n\n"

// Register adds the demo tools to reg. A nil weather client leaves the
// weather tool out.
func Register(reg *tool.Registry, weather *WeatherClient) error {
	descriptors := []*tool.Descriptor{
		tool.MustNew("greeting", "Greets someone by name",
			[]tool.Param{tool.Required("name", tool.TypeString).Describe("Who to greet")},
			greeting,
		),
		tool.MustNew("translate", "Builds a prompt asking for a Chinese translation",
			[]tool.Param{tool.Required("message", tool.TypeString).Describe("Text to translate")},
			translate,
		),
		tool.MustNew("test", "Echoes its arguments as [test1, test2, test3, path]",
			[]tool.Param{
				tool.Required("path", tool.TypeObject).Describe("Arbitrary object, echoed last"),
				tool.Required("test1", tool.TypeString),
				tool.Optional("test2", tool.TypeString, "").WithSchema(&jsonschema.Schema{
					Types: []string{"string", "array"},
					Items: &jsonschema.Schema{Type: "string"},
				}).Describe("A string or a list of strings"),
				tool.Optional("test3", tool.TypeString, nil),
			},
			echo,
		),
	}

	if weather != nil {
		descriptors = append(descriptors, tool.MustNew("weather", "Current weather conditions for a weather.com.cn city code",
			[]tool.Param{
				tool.Required("city_code", tool.TypeAny).WithSchema(&jsonschema.Schema{
					Types:   []string{"integer", "string"},
					Pattern: "^[0-9]+$",
				}).Describe("City code, e.g. 101010100 for Beijing"),
			},
			weatherHandler(weather),
		))
	}

	for _, d := range descriptors {
		if err := reg.Register(d); err != nil {
			return err
		}
	}

	return nil
}

func greeting(_ context.Context, args tool.Args) (any, error) {
	return fmt.Sprintf("Hello, %s!", args.String("name")), nil
}

func translate(_ context.Context, args tool.Args) (any, error) {
	return TranslatePrompt + args.String("message"), nil
}

func echo(_ context.Context, args tool.Args) (any, error) {
	return []any{args["test1"], args["test2"], args["test3"], args["path"]}, nil
}

func weatherHandler(client *WeatherClient) tool.Handler {
	return func(ctx context.Context, args tool.Args) (any, error) {
		code := args.String("city_code")
		if f, ok := args["city_code"].(float64); ok {
			code = strconv.FormatInt(int64(f), 10)
		}

		return client.Lookup(ctx, code)
	}
}
