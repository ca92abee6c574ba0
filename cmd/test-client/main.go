package main

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/quic-go/quic-go/http3"
)

func main() {
	var (
		baseURL    string
		expression string
		frameRate  string
	)
	flag.StringVar(&baseURL, "url", "https://localhost:8443", "Server base URL")
	flag.StringVar(&expression, "expr", "01:00:00;00 + 00:00:10;00", "Expression to evaluate")
	flag.StringVar(&frameRate, "rate", "29.97", "Default frame rate for the expression")
	flag.Parse()

	client := &http.Client{
		Transport: &http3.RoundTripper{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		},
		Timeout: 10 * time.Second,
	}
	base := strings.TrimRight(baseURL, "/")

	fmt.Printf("Testing HTTP/3 endpoint: %s\n", base)

	resp, err := client.Get(base + "/health")
	if err != nil {
		log.Fatalf("Health request failed: %v", err)
	}
	report(resp)

	body, err := json.Marshal(map[string]string{
		"framerate":  frameRate,
		"expression": expression,
	})
	if err != nil {
		log.Fatalf("Failed to encode request: %v", err)
	}
	resp, err = client.Post(base+"/api/v1/timecodes/evaluate", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("Evaluate request failed: %v", err)
	}
	report(resp)
}

func report(resp *http.Response) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Failed to read response: %v", err)
	}

	fmt.Printf("\n%s %s\n", resp.Request.Method, resp.Request.URL)
	fmt.Printf("Status: %s\n", resp.Status)
	fmt.Printf("Protocol: %s\n", resp.Proto)
	fmt.Printf("Body:\n%s\n", string(body))
}
