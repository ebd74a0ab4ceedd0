package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type step struct {
	Name     string
	Method   string
	Path     string
	Token    string
	Body     interface{}
	Expect   int
	Critical bool
}

type result struct {
	Step     step
	Status   int
	Duration time.Duration
	Body     []byte
	Error    error
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type runner struct {
	client  *http.Client
	base    string
	results []result
}

func main() {
	var (
		base    string
		timeout time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8000", "API base URL")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	r := &runner{client: &http.Client{Timeout: timeout}, base: strings.TrimRight(base, "/")}
	suffix := time.Now().UTC().Format("150405")

	ngo := r.account("ngo"+suffix, "ngo")
	volunteer := r.account("vol"+suffix, "volunteer")
	corporate := r.account("corp"+suffix, "corporate")

	var event struct {
		ID string `json:"id"`
	}
	r.decode(r.run(step{
		Name: "create event", Method: http.MethodPost, Path: "/api/events/", Token: ngo, Expect: http.StatusCreated, Critical: true,
		Body: map[string]interface{}{
			"title": "Beach clean-up", "description": "Bring gloves", "location": "North pier",
			"date": time.Now().AddDate(0, 0, 14).Format("2006-01-02"), "start_time": "09:00", "end_time": "12:00",
			"is_published": true,
		},
	}), &event)
	r.run(step{Name: "list events", Method: http.MethodGet, Path: "/api/events/", Expect: http.StatusOK, Critical: true})

	var app struct {
		ID string `json:"id"`
	}
	r.decode(r.run(step{
		Name: "apply", Method: http.MethodPost, Path: "/api/applications/", Token: volunteer, Expect: http.StatusCreated, Critical: true,
		Body: map[string]string{"event": event.ID},
	}), &app)
	r.run(step{
		Name: "apply twice", Method: http.MethodPost, Path: "/api/applications/", Token: volunteer, Expect: http.StatusConflict,
		Body: map[string]string{"event": event.ID},
	})
	r.run(step{
		Name: "approve", Method: http.MethodPatch, Path: "/api/applications/" + app.ID + "/", Token: ngo, Expect: http.StatusOK, Critical: true,
		Body: map[string]string{"status": "approved"},
	})
	r.run(step{Name: "issue certificate", Method: http.MethodPost, Path: "/api/applications/" + app.ID + "/certificate/", Token: ngo, Expect: http.StatusAccepted})

	var ngoProfile struct {
		ID string `json:"id"`
	}
	r.decode(r.run(step{Name: "ngo profile", Method: http.MethodGet, Path: "/auth/users/me/", Token: ngo, Expect: http.StatusOK, Critical: true}), &ngoProfile)
	txn := "SMOKE-" + suffix
	r.run(step{
		Name: "donate", Method: http.MethodPost, Path: "/api/donations/", Token: corporate, Expect: http.StatusCreated, Critical: true,
		Body: map[string]string{"ngo": ngoProfile.ID, "amount": "250.00", "transaction_id": txn},
	})
	r.run(step{
		Name: "donate duplicate transaction", Method: http.MethodPost, Path: "/api/donations/", Token: corporate, Expect: http.StatusConflict,
		Body: map[string]string{"ngo": ngoProfile.ID, "amount": "10.00", "transaction_id": txn},
	})
	r.run(step{Name: "ngo donations", Method: http.MethodGet, Path: "/api/donations/", Token: ngo, Expect: http.StatusOK})
	r.run(step{
		Name: "contact", Method: http.MethodPost, Path: "/contact/", Expect: http.StatusCreated,
		Body: map[string]string{"name": "Smoke Test", "email": "smoke@example.org", "message": "Checking the contact form works."},
	})

	printReport(r.results)

	breaking, optional := 0, 0
	for _, res := range r.results {
		if res.Error == nil && res.Status == res.Step.Expect {
			continue
		}
		if res.Step.Critical {
			breaking++
		} else {
			optional++
		}
	}
	fmt.Printf("Breaking failures: %d, Optional failures: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

// account registers username and returns its access token.
func (r *runner) account(username, role string) string {
	password := "smoke-" + username
	r.run(step{
		Name: "register " + role, Method: http.MethodPost, Path: "/auth/users/", Expect: http.StatusCreated, Critical: true,
		Body: map[string]string{"username": username, "email": username + "@example.org", "password": password, "role": role},
	})
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	r.decode(r.run(step{
		Name: "login " + role, Method: http.MethodPost, Path: "/auth/jwt/create/", Expect: http.StatusOK, Critical: true,
		Body: map[string]string{"username": username, "password": password},
	}), &tokens)
	if tokens.AccessToken == "" {
		log.Fatalf("no access token for %s; is the API running at %s?", username, r.base)
	}
	return tokens.AccessToken
}

func (r *runner) run(s step) result {
	res := result{Step: s}
	var body io.Reader
	if s.Body != nil {
		raw, err := json.Marshal(s.Body)
		if err != nil {
			res.Error = err
			r.results = append(r.results, res)
			return res
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(s.Method, r.base+s.Path, body)
	if err != nil {
		res.Error = err
		r.results = append(r.results, res)
		return res
	}
	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err
		r.results = append(r.results, res)
		return res
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	res.Body, res.Error = io.ReadAll(resp.Body)
	r.results = append(r.results, res)
	return res
}

func (r *runner) decode(res result, dst interface{}) {
	if res.Error != nil || len(res.Body) == 0 {
		return
	}
	var env envelope
	if err := json.Unmarshal(res.Body, &env); err != nil || len(env.Data) == 0 {
		return
	}
	_ = json.Unmarshal(env.Data, dst)
}

func printReport(results []result) {
	fmt.Println("Smoke Flow Report")
	fmt.Println("=================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if res.Status != res.Step.Expect {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s %s (%s)\n", status, res.Step.Method, res.Step.Path, res.Step.Name)
		fmt.Printf("  Status: %d, expected %d (%s)\n", res.Status, res.Step.Expect, res.Duration)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		}
	}
}
