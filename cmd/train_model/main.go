package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"

	"go.uber.org/zap"

	"medicare/config"
	"medicare/logging"
	"medicare/ml"
	"medicare/predictor"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	disease := flag.String("disease", "all", "disease to train: heart, diabetes or all")
	treeOut := flag.String("tree_out", "", "directory to write the fitted decision trees as JSON")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	diseases, err := selectDiseases(*disease)
	if err != nil {
		log.Fatal(err)
	}

	trees := make(map[string]*ml.DecisionTree)
	trainer := predictor.NewTrainer(cfg.Training, logger)
	trainer.OnCandidate = func(d predictor.Disease, name string, model ml.Classifier) {
		if tree, ok := model.(*ml.DecisionTree); ok {
			trees[d.Key] = tree
		}
	}

	failed := 0
	for _, d := range diseases {
		path, _ := cfg.DatasetPath(d.Key)
		model, err := trainer.Train(d, path)
		if err != nil {
			logger.Error("training failed", zap.String("disease", d.Key), zap.Error(err))
			failed++
			continue
		}
		printReport(model)

		if *treeOut != "" {
			if err := exportTree(*treeOut, d.Key, trees[d.Key]); err != nil {
				log.Fatalf("failed to export tree: %v", err)
			}
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func selectDiseases(name string) ([]predictor.Disease, error) {
	if name == "all" {
		return predictor.Diseases(), nil
	}
	d, ok := predictor.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown disease %q", name)
	}
	return []predictor.Disease{d}, nil
}

func printReport(m *predictor.Model) {
	fmt.Printf("\n%s (%d train / %d test)\n", m.Disease.Title, m.TrainSamples, m.TestSamples)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tSCALED\tACCURACY\tPRECISION\tRECALL\t")
	for _, c := range m.Candidates {
		marker := ""
		if c.Name == m.Name {
			marker = "*"
		}
		fmt.Fprintf(w, "%s%s\t%v\t%.2f%%\t%.3f\t%.3f\t\n", c.Name, marker, c.Scaled, c.Accuracy, c.Precision, c.Recall)
	}
	w.Flush()
	fmt.Printf("selected: %s (%.2f%%)\n", m.Name, m.Accuracy)
}

// exportTree saves the tree and reads it back to confirm the file loads.
func exportTree(dir, disease string, tree *ml.DecisionTree) error {
	if tree == nil {
		return fmt.Errorf("no decision tree fitted for %s", disease)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, disease+"_tree.json")
	if err := tree.Save(path); err != nil {
		return err
	}
	if _, err := ml.LoadModel("decision_tree", path); err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	fmt.Printf("decision tree (depth %d) saved to %s\n", tree.Depth(), path)
	return nil
}
