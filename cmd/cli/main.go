package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// The API only accepts these check intervals; reject anything else before
// the request goes out so the user isn't bounced after answering every
// prompt.
var allowedIntervals = map[int]bool{60: true, 300: true, 600: true, 900: true}

func parseInterval(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 300, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || !allowedIntervals[v] {
		return 0, fmt.Errorf("interval must be one of 60, 300, 600, 900")
	}
	return v, nil
}

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}
	adminKey := os.Getenv("ADMIN_API_KEY")

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Endpoint name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("URL to monitor (e.g., https://example.com/health): ")
	raw, _ := reader.ReadString('\n')
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		fmt.Println("Invalid URL.")
		return
	}

	fmt.Print("Check interval in seconds [60/300/600/900, default 300]: ")
	ivRaw, _ := reader.ReadString('\n')
	interval, err := parseInterval(ivRaw)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Print("Latency threshold in ms [default 500]: ")
	thRaw, _ := reader.ReadString('\n')
	threshold := 500
	if v, err := strconv.Atoi(strings.TrimSpace(thRaw)); err == nil && v > 0 {
		threshold = v
	}

	body, _ := json.Marshal(map[string]any{
		"name":             name,
		"url":              raw,
		"interval_seconds": interval,
		"threshold_ms":     threshold,
	})
	req, _ := http.NewRequest(http.MethodPost, api+"/api/endpoints", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if adminKey != "" {
		req.Header.Set("X-API-Key", adminKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("Error contacting API:", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		fmt.Println("Added! Check GET /api/endpoints for status.")
	} else {
		fmt.Println("API returned status:", resp.Status)
	}
}
