package datasvc_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/perivale/datasvc"
)

func ExampleBuild() {
	c, err := datasvc.Build("https://data.svc.internal/api",
		datasvc.WithTimeout(10*time.Second),
		datasvc.WithUserAgent("example/1.0"),
		datasvc.WithHeader("Authorization", "Bearer token"),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	_ = c
	fmt.Println("client built")
	// Output: client built
}

func ExampleClient_Self() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"values":{"owner":["alice","bob"]}}`)
	}))
	defer ts.Close()

	c, _ := datasvc.Build(ts.URL)

	self, err := c.Self(context.Background())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(self.Values["owner"][0])
	// Output: alice
}

func ExampleClient_Config() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"namespaceOid":"ns-1234","namespaceUserField":"owner"}`)
	}))
	defer ts.Close()

	c, _ := datasvc.Build(ts.URL)

	cfg, err := c.Config(context.Background())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(cfg.NamespaceOid, cfg.NamespaceUserField)
	// Output: ns-1234 owner
}

func ExampleClient_Props() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"report.pdf","security":{"owner":"alice"}}`)
	}))
	defer ts.Close()

	c, _ := datasvc.Build(ts.URL)

	props, err := c.Props(context.Background(), "docs/report.pdf")
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(props.Fields["name"], "owned by", props.Security.Owner)
	// Output: report.pdf owned by alice
}

func ExampleClient_FileList() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name":"a.txt"},{"name":"b.txt"}]`)
	}))
	defer ts.Close()

	c, _ := datasvc.Build(ts.URL)

	listing, err := c.FileList(context.Background(), "docs")
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	for _, m := range listing {
		fmt.Println(m.Fields["name"])
	}
	// Output:
	// a.txt
	// b.txt
}

func ExampleClient_StreamFileList() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name":"a.txt"},{"name":"b.txt"},{"name":"c.txt"}]`)
	}))
	defer ts.Close()

	c, _ := datasvc.Build(ts.URL)

	s, err := c.StreamFileList(context.Background(), "docs")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer s.Close()

	for s.Next() {
		fmt.Println(s.Item().Fields["name"])
	}
	if err := s.Err(); err != nil {
		fmt.Println("stream error:", err)
	}
	// Output:
	// a.txt
	// b.txt
	// c.txt
}

func ExampleClient_StreamFileList_all() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name":"a.txt"},{"name":"b.txt"}]`)
	}))
	defer ts.Close()

	c, _ := datasvc.Build(ts.URL)

	s, err := c.StreamFileList(context.Background(), "docs")
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	for m, err := range s.All() {
		if err != nil {
			fmt.Println("stream error:", err)
			return
		}
		fmt.Println(m.Fields["name"])
	}
	// Output:
	// a.txt
	// b.txt
}

func ExampleClient_WriteFolder() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name":"reports","revision":2}]`)
	}))
	defer ts.Close()

	c, _ := datasvc.Build(ts.URL)

	items := []datasvc.Metadata{{
		Fields: map[string]any{"name": "reports", "type": "folder"},
	}}

	echoed, err := c.WriteFolder(context.Background(), items)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(echoed.Fields["name"], echoed.Fields["revision"])
	// Output: reports 2
}

func ExampleClient_UserFolder() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"values":{"owner":["alice"]}}`)
	}))
	defer ts.Close()

	c, _ := datasvc.Build(ts.URL)

	cfg := datasvc.Config{NamespaceOid: "ns-1234", NamespaceUserField: "owner"}

	folder, err := c.UserFolder(context.Background(), cfg)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(folder)
	// Output: alice
}

func ExampleClient_PropsAndStatus() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"report.pdf"}`)
	}))
	defer ts.Close()

	c, _ := datasvc.Build(ts.URL)

	resp, err := c.PropsAndStatus(context.Background(), "docs/report.pdf")
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(resp.StatusCode, resp.Response)
	// Output: 200 {"name":"report.pdf"}
}

func ExampleWithThrottle() {
	c, err := datasvc.Build("https://data.svc.internal/api",
		datasvc.WithThrottle(10, 5),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	_ = c
	fmt.Println("ok")
	// Output: ok
}
