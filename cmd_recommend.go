package main

import (
	"fmt"

	"fertadvisor/fertilizer"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var recommendFlags struct {
	nitrogen, phosphorus, potassium, ph float64
	crop, stage, cropTable              string
}

// recommendCmd runs the local engine once and prints the JSON result.
// Readings outside the accepted ranges are clamped, not rejected.
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Print a recommendation for one soil reading",
	Example: `  fertadvisor recommend --crop tomato -n 45 -p 38 -k 52 --ph 6.8
  fertadvisor recommend --crop rice --stage seedling -n 10 -p 10 -k 10 --ph 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := recommendFlags
		engine, err := newEngine(CropsConfig{TablePath: f.cropTable})
		if err != nil {
			return err
		}
		soil := fertilizer.SoilReading{
			Nitrogen:   f.nitrogen,
			Phosphorus: f.phosphorus,
			Potassium:  f.potassium,
			PH:         f.ph,
		}.Clamped()

		rec, err := engine.Recommend(soil, f.crop, fertilizer.GrowthStage(f.stage))
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	},
}

func init() {
	fl := recommendCmd.Flags()
	fl.Float64VarP(&recommendFlags.nitrogen, "nitrogen", "n", 0, "soil nitrogen reading")
	fl.Float64VarP(&recommendFlags.phosphorus, "phosphorus", "p", 0, "soil phosphorus reading")
	fl.Float64VarP(&recommendFlags.potassium, "potassium", "k", 0, "soil potassium reading")
	fl.Float64Var(&recommendFlags.ph, "ph", 7, "soil pH")
	fl.StringVar(&recommendFlags.crop, "crop", "", "crop type, e.g. tomato")
	fl.StringVar(&recommendFlags.stage, "stage", "", "growth stage: seedling, vegetative, ...")
	fl.StringVar(&recommendFlags.cropTable, "crop-table", "", "YAML crop table replacing the built-in one")
	_ = recommendCmd.MarkFlagRequired("crop")
}
