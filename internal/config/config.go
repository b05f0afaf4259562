package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/signalnine/seedbench/internal/aggregate"
	"github.com/signalnine/seedbench/internal/report"
)

type Config struct {
	Name     string   `yaml:"name"`
	Solution Solution `yaml:"solution"`
	Scorer   Scorer   `yaml:"scorer"`
	Seeds    Seeds    `yaml:"seeds"`
	Parallel int      `yaml:"parallel"`
	Results  Results  `yaml:"results"`
	Report   Report   `yaml:"report"`
	Bundle   Bundle   `yaml:"bundle"`
	Secrets  Secrets  `yaml:"secrets"`
}

type Solution struct {
	Dir     string `yaml:"dir"`
	Build   string `yaml:"build"`
	Command string `yaml:"command"`
}

// Scorer is the external program that evaluates the solution on one seed.
// Its command may reference {command} and {seed}.
type Scorer struct {
	Command        string            `yaml:"command"`
	Image          string            `yaml:"image"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	Env            map[string]string `yaml:"env"`
	// CPUs and MemoryMB limit containerized scorers; zero means unlimited.
	CPUs     float64 `yaml:"cpus"`
	MemoryMB int64   `yaml:"memory_mb"`
}

type Seeds struct {
	From int   `yaml:"from"`
	To   int   `yaml:"to"`
	List []int `yaml:"list"`
}

type Results struct {
	Dir string `yaml:"dir"`
}

type Report struct {
	Title   string   `yaml:"title"`
	Rows    string   `yaml:"rows"`
	Columns string   `yaml:"columns"`
	Exclude []string `yaml:"exclude"`
}

type Bundle struct {
	Entry     string `yaml:"entry"`
	Define    string `yaml:"define"`
	Depth     int    `yaml:"depth"`
	Clipboard string `yaml:"clipboard"`
}

type Secrets struct {
	EnvFile string `yaml:"env_file"`
}

// All returns the configured seeds: the explicit list when present, otherwise
// the inclusive range.
func (s Seeds) All() []int {
	if len(s.List) > 0 {
		return append([]int(nil), s.List...)
	}
	seeds := make([]int, 0, s.To-s.From+1)
	for i := s.From; i <= s.To; i++ {
		seeds = append(seeds, i)
	}
	return seeds
}

func (r Report) AggregateOptions() aggregate.Options {
	return aggregate.NewOptions(r.Exclude)
}

func (r Report) ReportOptions() report.Options {
	return report.Options{
		Title:     r.Title,
		Rows:      r.Rows,
		Columns:   r.Columns,
		Aggregate: r.AggregateOptions(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Scorer.Command) == "" {
		return fmt.Errorf("scorer.command is required")
	}
	if cfg.Solution.Command == "" {
		cfg.Solution.Command = "./main"
	}
	if cfg.Solution.Dir == "" {
		cfg.Solution.Dir = "."
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	if cfg.Scorer.TimeoutSeconds < 0 {
		return fmt.Errorf("scorer.timeout_seconds must not be negative")
	}
	if cfg.Scorer.CPUs < 0 || cfg.Scorer.MemoryMB < 0 {
		return fmt.Errorf("scorer resource limits must not be negative")
	}

	if len(cfg.Seeds.List) == 0 {
		if cfg.Seeds.From == 0 && cfg.Seeds.To == 0 {
			cfg.Seeds.From, cfg.Seeds.To = 1, 200
		}
		if cfg.Seeds.To < cfg.Seeds.From {
			return fmt.Errorf("seeds: to (%d) is before from (%d)", cfg.Seeds.To, cfg.Seeds.From)
		}
	}

	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "results"
	}

	if cfg.Report.Rows == "" {
		cfg.Report.Rows = report.AxisSize
	}
	if cfg.Report.Columns == "" {
		cfg.Report.Columns = report.AxisDensity
	}
	for _, axis := range []string{cfg.Report.Rows, cfg.Report.Columns} {
		if _, err := report.Axis(axis); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	if cfg.Report.Exclude == nil {
		cfg.Report.Exclude = aggregate.DefaultExcluded()
	}

	if cfg.Bundle.Entry == "" {
		cfg.Bundle.Entry = "sol.cc"
	}
	if cfg.Bundle.Define == "" {
		cfg.Bundle.Define = "SUBMISSION"
	}
	if cfg.Bundle.Depth < 1 {
		cfg.Bundle.Depth = 3
	}
	if cfg.Bundle.Clipboard == "" {
		cfg.Bundle.Clipboard = "xsel --clipboard --input"
	}
	return nil
}
