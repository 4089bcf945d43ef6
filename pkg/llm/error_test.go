package llm_test

import (
	"errors"
	"fmt"
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/freellmlabs/freellm-go/pkg/llm"
)

var _ = Describe("Error", func() {
	Describe("Transient", func() {
		It("treats connection failures and timeouts as transient", func() {
			Expect(llm.NewConnectionError("refused", nil).Transient()).To(BeTrue())
			Expect(llm.NewTimeoutError("deadline", nil).Transient()).To(BeTrue())
		})

		It("treats 5xx and 429 as transient", func() {
			Expect(llm.NewAPIError(500, "internal", "").Transient()).To(BeTrue())
			Expect(llm.NewAPIError(503, "unavailable", "").Transient()).To(BeTrue())
			Expect(llm.NewAPIError(429, "rate limited", "").Transient()).To(BeTrue())
		})

		It("treats other 4xx and validation failures as non-transient", func() {
			Expect(llm.NewAPIError(400, "bad request", "").Transient()).To(BeFalse())
			Expect(llm.NewAPIError(404, "not found", "").Transient()).To(BeFalse())
			Expect(llm.NewValidationError("empty message").Transient()).To(BeFalse())
		})
	})

	Describe("IsTransient", func() {
		It("unwraps through fmt.Errorf chains", func() {
			wrapped := fmt.Errorf("chat failed: %w", llm.NewAPIError(502, "bad gateway", ""))
			Expect(llm.IsTransient(wrapped)).To(BeTrue())
		})

		It("is false for untyped errors", func() {
			Expect(llm.IsTransient(errors.New("plain"))).To(BeFalse())
			Expect(llm.IsTransient(nil)).To(BeFalse())
		})
	})

	It("preserves the wrapped cause", func() {
		cause := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
		err := llm.NewConnectionError("failed to connect to API", cause)

		var opErr *net.OpError
		Expect(errors.As(err, &opErr)).To(BeTrue())
	})

	It("includes the status code in the message for API errors", func() {
		err := llm.NewAPIError(503, "service unavailable", `{"error":"overloaded"}`)
		Expect(err.Error()).To(ContainSubstring("503"))
		Expect(err.Body).To(Equal(`{"error":"overloaded"}`))
	})
})

var _ = Describe("ChatRequest validation", func() {
	It("accepts a plain message", func() {
		req := &llm.ChatRequest{Message: "Hello AI!"}
		Expect(req.Validate()).To(Succeed())
	})

	It("rejects an empty or whitespace-only message", func() {
		for _, msg := range []string{"", "   ", "\n\t"} {
			err := (&llm.ChatRequest{Message: msg}).Validate()
			var cerr *llm.Error
			Expect(errors.As(err, &cerr)).To(BeTrue())
			Expect(cerr.Kind).To(Equal(llm.KindValidation))
		}
	})

	It("rejects out-of-range temperature", func() {
		for _, temp := range []float64{-0.1, 2.1, 100} {
			t := temp
			err := (&llm.ChatRequest{Message: "hi", Temperature: &t}).Validate()
			var cerr *llm.Error
			Expect(errors.As(err, &cerr)).To(BeTrue())
			Expect(cerr.Kind).To(Equal(llm.KindValidation))
		}
	})

	It("accepts boundary temperatures", func() {
		for _, temp := range []float64{0.0, 2.0} {
			t := temp
			Expect((&llm.ChatRequest{Message: "hi", Temperature: &t}).Validate()).To(Succeed())
		}
	})

	It("rejects non-positive max_tokens", func() {
		for _, n := range []int{0, -1} {
			mt := n
			err := (&llm.ChatRequest{Message: "hi", MaxTokens: &mt}).Validate()
			var cerr *llm.Error
			Expect(errors.As(err, &cerr)).To(BeTrue())
			Expect(cerr.Kind).To(Equal(llm.KindValidation))
		}
	})
})
