package questiongenerator

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LLMLogger writes a per-generation transcript of model interactions to a
// file: prompts, responses, diversity rejections and shortfalls.
type LLMLogger struct {
	file         *os.File
	mu           sync.Mutex
	generationID string
}

var (
	globalLoggerMu sync.RWMutex
	globalLogger   *LLMLogger
)

// SetGlobalLogger installs the transcript logger used by the generation
// strategies for the duration of a call.
func SetGlobalLogger(logger *LLMLogger) {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	globalLogger = logger
}

// GetGlobalLogger returns the installed transcript logger, or nil.
func GetGlobalLogger() *LLMLogger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// NewLLMLogger creates a transcript logger for one generation request.
func NewLLMLogger(generationID string, req GenerationRequest) (*LLMLogger, error) {
	if err := os.MkdirAll("log", 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join("log", fmt.Sprintf("%s.log", generationID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &LLMLogger{
		file:         file,
		generationID: generationID,
	}

	logger.Logf("=== Question Generation Log ===\n")
	logger.Logf("Generation ID: %s\n", generationID)
	logger.Logf("Subject: %s\n", req.Subject)
	if req.Topic != "" {
		logger.Logf("Topic: %s\n", req.Topic)
	}
	logger.Logf("Number of Questions: %d\n", req.NumQuestions)
	logger.Logf("Context Length: %d characters\n", len(req.Context))
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("========================\n\n")

	return logger, nil
}

// Logf writes a formatted log entry with timestamp
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	message := fmt.Sprintf(format, args...)

	fmt.Fprintf(ll.file, "[%s] %s", timestamp, message)
	ll.file.Sync()
}

// LogLLMRequest logs an LLM request
func (ll *LLMLogger) LogLLMRequest(module, prompt string) {
	ll.Logf("=== LLM REQUEST (%s) ===\n", module)
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("=====================\n\n")
}

// LogLLMResponse logs an LLM response
func (ll *LLMLogger) LogLLMResponse(module, response string) {
	ll.Logf("=== LLM RESPONSE (%s) ===\n", module)
	ll.Logf("Response:\n%s\n", response)
	ll.Logf("======================\n\n")
}

// LogRejection records a question dropped by the diversity filter.
func (ll *LLMLogger) LogRejection(question, reason string) {
	ll.Logf("REJECTED %q: %s\n", question, reason)
}

// LogShortfall records under-delivery relative to the requested count.
func (ll *LLMLogger) LogShortfall(got, want int) {
	ll.Logf("SHORTFALL: %d of %d requested questions delivered\n", got, want)
}

// Close closes the log file
func (ll *LLMLogger) Close() error {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file != nil {
		timestamp := time.Now().Format("15:04:05.000")
		fmt.Fprintf(ll.file, "[%s] === Generation Complete: %s ===\n", timestamp, time.Now().Format(time.RFC3339))
		return ll.file.Close()
	}
	return nil
}
