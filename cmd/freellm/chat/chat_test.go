package chatcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/freellmlabs/freellm-go/pkg/llm"
)

var _ = Describe("Chat Command", func() {
	var (
		ctx    context.Context
		srv    *httptest.Server
		mu     sync.Mutex
		bodies []llm.ChatRequest
	)

	BeforeEach(func() {
		ctx = context.Background()
		bodies = nil
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			var req llm.ChatRequest
			// Assertions stay on the spec goroutine; the handler only records.
			_ = json.Unmarshal(raw, &req)
			mu.Lock()
			bodies = append(bodies, req)
			n := len(bodies)
			mu.Unlock()
			switch n {
			case 1:
				json.NewEncoder(w).Encode(llm.ChatResponse{Response: "Nice to meet you, Alice!"})
			default:
				json.NewEncoder(w).Encode(llm.ChatResponse{Response: "Your name is Alice."})
			}
		}))
	})

	AfterEach(func() {
		srv.Close()
	})

	sentRequests := func() []llm.ChatRequest {
		mu.Lock()
		defer mu.Unlock()
		out := make([]llm.ChatRequest, len(bodies))
		copy(out, bodies)
		return out
	}

	runChat := func(stdin string, args ...string) (string, error) {
		cmd := NewChatCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		if stdin != "" {
			cmd.SetIn(strings.NewReader(stdin))
		}
		cmd.SetArgs(args)
		err := cmd.ExecuteContext(ctx)
		return out.String(), err
	}

	It("sends a one-shot message and prints the response", func() {
		out, err := runChat("", "--base-url", srv.URL, "Hello AI!")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Nice to meet you, Alice!"))

		reqs := sentRequests()
		Expect(reqs).To(HaveLen(1))
		Expect(reqs[0].Message).To(Equal("Hello AI!"))
	})

	It("passes model and sampling flags through to the request", func() {
		_, err := runChat("", "--base-url", srv.URL,
			"--model", "llama3",
			"--temperature", "0.2",
			"--max-tokens", "64",
			"Summarize Go contexts")
		Expect(err).NotTo(HaveOccurred())

		reqs := sentRequests()
		Expect(reqs).To(HaveLen(1))
		Expect(reqs[0].Model).To(Equal("llama3"))
		Expect(*reqs[0].Temperature).To(Equal(0.2))
		Expect(*reqs[0].MaxTokens).To(Equal(64))
	})

	It("reads settings from a TOML config file", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "freellm.toml")
		content := "base_url = \"" + srv.URL + "\"\nmodel = \"mistral\"\ntemperature = 0.5\n"
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())

		_, err := runChat("", "--config", path, "hi")
		Expect(err).NotTo(HaveOccurred())

		reqs := sentRequests()
		Expect(reqs).To(HaveLen(1))
		Expect(reqs[0].Model).To(Equal("mistral"))
		Expect(*reqs[0].Temperature).To(Equal(0.5))
	})

	It("gives flags precedence over the config file", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "freellm.toml")
		content := "base_url = \"" + srv.URL + "\"\nmodel = \"mistral\"\n"
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())

		_, err := runChat("", "--config", path, "--model", "llama3", "hi")
		Expect(err).NotTo(HaveOccurred())

		reqs := sentRequests()
		Expect(reqs).To(HaveLen(1))
		Expect(reqs[0].Model).To(Equal("llama3"))
	})

	It("keeps conversation context between interactive turns", func() {
		stdin := "My name is Alice\nWhat's my name?\n\n"
		out, err := runChat(stdin, "--base-url", srv.URL, "--interactive")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Your name is Alice."))

		reqs := sentRequests()
		Expect(reqs).To(HaveLen(2))
		Expect(reqs[0].Message).To(Equal("My name is Alice"))
		Expect(reqs[1].Message).To(Equal(
			"user: My name is Alice\nassistant: Nice to meet you, Alice!\nuser: What's my name?"))
	})

	It("fails without a message in one-shot mode", func() {
		_, err := runChat("", "--base-url", srv.URL)
		Expect(err).To(HaveOccurred())
		Expect(sentRequests()).To(BeEmpty())
	})
})
