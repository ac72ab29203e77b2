// apiclient is a small smoke-test client for a running
// compliance-review-service instance.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "service base URL")
	text := flag.String("text", "I accidentally sent the customer list to the wrong vendor.", "text to analyze")
	flag.Parse()

	payload, err := json.Marshal(map[string]string{"text": *text})
	if err != nil {
		log.Fatalf("marshal request: %v", err)
	}

	client := &http.Client{Timeout: 2 * time.Minute}

	log.Printf("POST %s/api/analyze/text", *addr)
	resp, err := client.Post(*addr+"/api/analyze/text", "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("read response: %v", err)
	}

	log.Printf("status: %s", resp.Status)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(pretty.String())
}
