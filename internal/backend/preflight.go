// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Preflight checks that a configured backend can be reached

package backend

import (
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ollamaProbeTimeout bounds the reachability probe
const ollamaProbeTimeout = 2 * time.Second

// Check is the outcome of one preflight probe
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Preflight probes the backend selected by config without generating anything
func Preflight(config *Config) []Check {
	if config == nil {
		config = DefaultConfig()
	}
	config = config.WithDefaults()

	if err := config.Validate(); err != nil {
		return []Check{{Name: "config", Detail: err.Error()}}
	}

	switch config.Kind {
	case KindCommand:
		return []Check{checkCommand(config.Command)}
	case KindOllama:
		return []Check{checkOllama(ollamaBaseURL(config))}
	case KindGemini:
		return []Check{checkGeminiKey(config.Token)}
	case KindReplay:
		return []Check{checkResponseFile(config.ResponseFile)}
	}
	return nil
}

// Ready reports whether every check passed
func Ready(checks []Check) bool {
	for _, c := range checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// checkCommand looks the command up in PATH
func checkCommand(command string) Check {
	c := Check{Name: "command " + command}
	path, err := exec.LookPath(command)
	if err != nil {
		c.Detail = "not found in PATH"
		return c
	}
	c.OK = true
	c.Detail = path
	return c
}

// checkOllama asks the server for its model list
func checkOllama(base string) Check {
	c := Check{Name: "ollama " + base}
	client := &http.Client{Timeout: ollamaProbeTimeout}
	resp, err := client.Get(base + "/api/tags")
	if err != nil {
		c.Detail = "unreachable: " + err.Error()
		return c
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.Detail = "unexpected status " + resp.Status
		return c
	}
	c.OK = true
	c.Detail = "reachable"
	return c
}

// checkGeminiKey verifies an API key is available to the client
func checkGeminiKey(token string) Check {
	c := Check{Name: "gemini api key"}
	switch {
	case token != "":
		c.OK, c.Detail = true, "from config ("+MaskToken(token)+")"
	case strings.TrimSpace(os.Getenv("GEMINI_API_KEY")) != "":
		c.OK, c.Detail = true, "from GEMINI_API_KEY"
	case strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")) != "":
		c.OK, c.Detail = true, "from GOOGLE_API_KEY"
	default:
		c.Detail = "set backend.token, GEMINI_API_KEY or GOOGLE_API_KEY"
	}
	return c
}

// checkResponseFile verifies the captured response exists
func checkResponseFile(path string) Check {
	c := Check{Name: "response file " + path}
	info, err := os.Stat(path)
	if err != nil {
		c.Detail = err.Error()
		return c
	}
	if info.IsDir() {
		c.Detail = "is a directory"
		return c
	}
	c.OK = true
	c.Detail = "present"
	return c
}
