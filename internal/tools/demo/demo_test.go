package demo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/wstools-go/internal/protocol"
	"github.com/wagiedev/wstools-go/internal/tool"
)

const sampleWeather = `var dataSK={"nameen":"beijing","cityname":"北京","city":"101010100",` +
	`"temp":"27.9","wd":"西南风","ws":"2级","sd":"28%","aqi":"10","weather":"晴"}`

func weatherServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sk_2d/101010100.html":
			assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
			assert.Equal(t, "http://www.weather.com.cn/", r.Header.Get("Referer"))
			_, _ = w.Write([]byte(sampleWeather))
		case "/sk_2d/1.html":
			_, _ = w.Write([]byte("no data"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func dispatcher(t *testing.T, weather *WeatherClient) *protocol.Handler {
	t.Helper()

	reg := tool.NewRegistry()
	require.NoError(t, Register(reg, weather))
	reg.Freeze()

	return protocol.NewHandler(nil, reg, 5*time.Second)
}

func dispatch(t *testing.T, h *protocol.Handler, request string) string {
	t.Helper()

	return string(protocol.Marshal(h.Handle(context.Background(), []byte(request))))
}

func TestRegister(t *testing.T) {
	reg := tool.NewRegistry()
	require.NoError(t, Register(reg, nil))
	require.Equal(t, []string{"greeting", "translate", "test"}, reg.Names())

	reg = tool.NewRegistry()
	require.NoError(t, Register(reg, NewWeatherClient(nil, "", time.Second)))
	require.Equal(t, []string{"greeting", "translate", "test", "weather"}, reg.Names())

	require.Error(t, Register(reg, nil), "registering twice must fail")
}

func TestTools(t *testing.T) {
	h := dispatcher(t, nil)

	tests := []struct {
		name    string
		request string
		want    string
	}{
		{"greeting", `{"func":"greeting","name":"Ada"}`, `{"result":"Hello, Ada!"}`},
		{"translate", `{"func":"translate","message":"hi"}`, `{"result":"请将下面的话语翻译成中文：\n\nhi"}`},
		{
			"test defaults",
			`{"func":"test","params":{"path":{"start":"a","end":"b"},"test1":"x"}}`,
			`{"result":["x","",null,{"end":"b","start":"a"}]}`,
		},
		{
			"test list",
			`{"func":"test","path":{},"test1":"x","test2":["a","b"],"test3":"z"}`,
			`{"result":["x",["a","b"],"z",{}]}`,
		},
		{
			"test wrong test2",
			`{"func":"test","path":{},"test1":"x","test2":[1]}`,
			``,
		},
		{"test missing path", `{"func":"test","test1":"x"}`, `{"error":"missing required parameter: path"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dispatch(t, h, tt.request)
			if tt.want == "" {
				require.Contains(t, got, `"error":"parameter \"test2\":`)

				return
			}

			require.JSONEq(t, tt.want, got)
		})
	}
}

func TestWeatherClient_Lookup(t *testing.T) {
	srv := weatherServer(t)
	client := NewWeatherClient(nil, srv.URL+"/", time.Second)

	got, err := client.Lookup(context.Background(), "101010100")
	require.NoError(t, err)
	require.Equal(t, &Weather{
		CityNameEN: "beijing",
		CityNameCN: "北京",
		CityCode:   "101010100",
		Temp:       "27.9",
		WD:         "西南风",
		WS:         "2级",
		SD:         "28%",
		AQI:        "10",
		Weather:    "晴",
	}, got)

	_, err = client.Lookup(context.Background(), "")
	require.EqualError(t, err, "city_code is empty")

	_, err = client.Lookup(context.Background(), "1")
	require.EqualError(t, err, "weather response has no JSON object")

	_, err = client.Lookup(context.Background(), "404")
	require.EqualError(t, err, "weather service returned 404 Not Found")
}

func TestWeatherTool(t *testing.T) {
	srv := weatherServer(t)
	h := dispatcher(t, NewWeatherClient(nil, srv.URL, time.Second))

	want := `{"result":{"city_name_en":"beijing","city_name_cn":"北京","city_code":"101010100",` +
		`"temp":"27.9","wd":"西南风","ws":"2级","sd":"28%","aqi":"10","weather":"晴"}}`

	require.JSONEq(t, want, dispatch(t, h, `{"func":"weather","city_code":101010100}`))
	require.JSONEq(t, want, dispatch(t, h, `{"func":"weather","city_code":"101010100"}`))
	require.JSONEq(t, `{"error":"weather service returned 404 Not Found"}`, dispatch(t, h, `{"func":"weather","city_code":"42"}`))
	require.Contains(t, dispatch(t, h, `{"func":"weather","city_code":"beijing"}`), `"error":"parameter \"city_code\":`)
	require.Contains(t, dispatch(t, h, `{"func":"weather","city_code":1.5}`), `"error":"parameter \"city_code\":`)
}
