package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/hannes/sentimento/src/backend/sentiment/classifiers"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Classify text given as arguments or on stdin",
	Example: `  sentimento classify "O PIB cresceu acima do esperado"
  echo "A inflação voltou a subir" | sentimento classify`,
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	text, err := readText(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return classifiers.ErrEmptyInput
	}

	ctx, stop := withSignals(cmd.Context())
	defer stop()

	models := newModelManager(cfg)
	defer models.Close()

	classifier, err := models.GetClassifier()
	if err != nil {
		return err
	}
	prediction, err := classifier.Classify(ctx, classifiers.Input{Text: text})
	if err != nil {
		return err
	}

	writePrediction(cmd.OutOrStdout(), prediction)
	return nil
}

func readText(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func writePrediction(w io.Writer, p classifiers.Prediction) {
	fmt.Fprintf(w, "Sentimento: %s (confiança %.4f)\n", p.Label, p.Confidence)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Sentimento", "Probabilidade"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for i, label := range classifiers.Labels {
		prob := 0.0
		if i < len(p.Probabilities) {
			prob = p.Probabilities[i]
		}
		table.Append([]string{label, fmt.Sprintf("%.4f", prob)})
	}
	table.Render()
}
