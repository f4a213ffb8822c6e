// Copyright 2026 The Tenauth Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command seed populates a running server with demo tenants and users.
// It talks to the public HTTP API, so it exercises the same paths a
// client would.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

type tenantResponse struct {
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
}

type tokenResponse struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the running server")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	if err := waitForHealth(client, *baseURL); err != nil {
		fmt.Printf("server not ready: %v\n", err)
		os.Exit(1)
	}

	tenants := []struct {
		name   string
		domain string
	}{
		{"Acme Corp", "acme.com"},
		{"Tech Startup", "techstartup.io"},
		{"Digital Agency", "agency.co"},
	}

	for _, t := range tenants {
		created, err := createTenant(client, *baseURL, t.name, t.domain)
		if err != nil {
			fmt.Printf("failed to create tenant %s: %v\n", t.name, err)
			os.Exit(1)
		}
		fmt.Printf("created tenant %s (%s)\n", created.Name, created.TenantID)

		slug := strings.ReplaceAll(strings.ToLower(t.name), " ", "")
		seedUsers := []struct {
			email    string
			password string
			role     string
		}{
			{fmt.Sprintf("admin@%s.com", slug), "admin123", "admin"},
			{fmt.Sprintf("user@%s.com", slug), "user123", "user"},
		}

		for _, u := range seedUsers {
			tok, err := register(client, *baseURL, created.TenantID, u.email, u.password, u.role)
			if err != nil {
				fmt.Printf("failed to register %s: %v\n", u.email, err)
				os.Exit(1)
			}
			fmt.Printf("  registered %s role=%s user_id=%s\n", u.email, tok.Role, tok.UserID)
		}
	}

	fmt.Println("seed complete")
}

func waitForHealth(client *http.Client, baseURL string) error {
	var lastErr error
	for i := 0; i < 10; i++ {
		resp, err := client.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			lastErr = fmt.Errorf("health returned %d", resp.StatusCode)
		} else {
			lastErr = err
		}
		time.Sleep(time.Second)
	}
	return lastErr
}

func createTenant(client *http.Client, baseURL, name, domain string) (*tenantResponse, error) {
	body, _ := json.Marshal(map[string]string{"name": name, "domain": domain})
	resp, err := client.Post(baseURL+"/tenants", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var t tenantResponse
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func register(client *http.Client, baseURL, tenantID, email, password, role string) (*tokenResponse, error) {
	body, _ := json.Marshal(map[string]string{
		"email":     email,
		"password":  password,
		"tenant_id": tenantID,
		"role":      role,
	})
	resp, err := client.Post(baseURL+"/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, err
	}
	return &tok, nil
}
