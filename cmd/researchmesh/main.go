// Command researchmesh runs the interactive research-and-summarize pipeline
// against the OpenAI API. Configuration comes from an optional YAML file and
// the environment (loaded from .env when present).
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hupe1980/researchmesh"
	"github.com/hupe1980/researchmesh/config"
	"github.com/hupe1980/researchmesh/logging"
	"github.com/hupe1980/researchmesh/memory"
	modelopenai "github.com/hupe1980/researchmesh/model/openai"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	// Missing .env is fine; the variable may come from the environment.
	_ = godotenv.Load()

	if os.Getenv("OPENAI_API_KEY") == "" {
		return fmt.Errorf("OPENAI_API_KEY not found in environment or .env file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	level := logging.LogLevelInfo
	if *verbose {
		level = logging.LogLevelDebug
	}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: "text",
		Output: os.Stderr,
	})

	mesh, err := researchmesh.New(func(o *researchmesh.Options) {
		o.Config = cfg
		o.ResearchModel = modelopenai.NewModel()
		o.SummaryModel = modelopenai.NewModel(func(mo *modelopenai.Options) {
			mo.Temperature = 0.5
		})
		o.Embedder = memory.NewOpenAIEmbedder()
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	topic := prompt(reader, "Enter research topic: ")
	if topic == "" {
		topic = "AI agents and multi-agent systems"
	}

	focusInput := prompt(reader, "Enter focus areas (comma-separated): ")
	var focusAreas []string
	if focusInput != "" {
		for _, area := range strings.Split(focusInput, ",") {
			if area = strings.TrimSpace(area); area != "" {
				focusAreas = append(focusAreas, area)
			}
		}
	}

	result, err := mesh.Run(context.Background(), topic, focusAreas...)
	if err != nil {
		return err
	}

	fmt.Println("\nResearch completed successfully.")
	fmt.Printf("Session: %s\n", result.SessionID)
	fmt.Printf("Research report: %s\n", result.ResearchFile)
	fmt.Printf("Summary report:  %s\n", result.SummaryFile)
	fmt.Printf("Files saved to: %s\n", cfg.Output.Dir)
	return nil
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
