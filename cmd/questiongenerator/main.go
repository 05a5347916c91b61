package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"questiongenerator"
)

func main() {
	var (
		contextFile  = flag.String("context-file", "", "Path to the source document (plain text or PDF)")
		contextText  = flag.String("text", "", "Source text given directly on the command line")
		subject      = flag.String("subject", "General Knowledge", "Subject name attached to generated questions")
		topic        = flag.String("topic", "", "Optional topic name")
		levels       = flag.String("levels", "", "Comma-separated taxonomy levels (default: all)")
		difficulties = flag.String("difficulties", "", "Comma-separated difficulty levels (default: all)")
		numQuestions = flag.Int("questions", 10, "Number of questions to generate")
		remote       = flag.Bool("remote", false, "Use the remote model strategy (falls back to templates)")
		paperFile    = flag.String("paper", "", "Path to a paper specification JSON file (paper mode)")
		outputFile   = flag.String("output", "", "Output file for JSON (default: stdout)")
		configFile   = flag.String("config", "", "Path to a YAML config file")
		apiKey       = flag.String("api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
		verbose      = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	questiongenerator.SetVerbose(*verbose)

	cfg, err := questiongenerator.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *apiKey != "" {
		cfg.OpenAI.APIKey = *apiKey
	}
	if *remote && cfg.OpenAI.APIKey == "" {
		log.Fatal("Remote mode requires an API key. Use -api-key or set OPENAI_API_KEY.")
	}

	text := *contextText
	if *contextFile != "" {
		text, err = questiongenerator.ExtractText(*contextFile)
		if err != nil {
			log.Fatalf("Failed to extract text: %v", err)
		}
	}
	if strings.TrimSpace(text) == "" {
		log.Fatal("Context is required. Use -context-file or -text.")
	}

	generator := questiongenerator.NewGeneratorFromConfig(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var output []byte
	if *paperFile != "" {
		spec, err := loadPaperSpec(*paperFile)
		if err != nil {
			log.Fatalf("Failed to load paper specification: %v", err)
		}
		spec.UseRemote = *remote
		if spec.Subject == "" {
			spec.Subject = *subject
		}

		paper, err := generator.GenerateQuestionPaper(ctx, text, spec)
		if err != nil {
			log.Fatalf("Failed to generate question paper: %v", err)
		}
		output, err = json.MarshalIndent(paper, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal question paper: %v", err)
		}
	} else {
		req := questiongenerator.GenerationRequest{
			Context:          text,
			Subject:          *subject,
			Topic:            *topic,
			TaxonomyLevels:   parseTaxonomyList(*levels),
			DifficultyLevels: parseDifficultyList(*difficulties),
			NumQuestions:     *numQuestions,
			UseRemote:        *remote,
		}

		records, err := generator.GenerateQuestionSet(ctx, req)
		if err != nil {
			log.Fatalf("Failed to generate questions: %v", err)
		}
		output, err = json.MarshalIndent(records, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal questions: %v", err)
		}
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			log.Fatalf("Failed to write output file: %v", err)
		}
		log.Printf("Output saved to: %s", *outputFile)
	} else {
		fmt.Println(string(output))
	}
}

func loadPaperSpec(path string) (questiongenerator.PaperSpec, error) {
	var spec questiongenerator.PaperSpec
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, err
	}
	if err := json.Unmarshal(data, &spec); err != nil {
		return spec, err
	}
	return spec, nil
}

func parseTaxonomyList(s string) []questiongenerator.TaxonomyLevel {
	var levels []questiongenerator.TaxonomyLevel
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		level, ok := questiongenerator.ParseTaxonomyLevel(part)
		if !ok {
			log.Fatalf("Unknown taxonomy level: %s", part)
		}
		levels = append(levels, level)
	}
	return levels
}

func parseDifficultyList(s string) []questiongenerator.DifficultyLevel {
	var levels []questiongenerator.DifficultyLevel
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		level, ok := questiongenerator.ParseDifficultyLevel(part)
		if !ok {
			log.Fatalf("Unknown difficulty level: %s", part)
		}
		levels = append(levels, level)
	}
	return levels
}
