package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scopify/benchmark-agent/internal/model"
	"github.com/scopify/benchmark-agent/internal/pipeline"
)

var (
	runCompany    string
	runURL        string
	runIndustry   string
	runHQLocation string
	runDataFile   string
	runOutput     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single research job synchronously and print the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		input := model.InputContext{
			Company:    runCompany,
			CompanyURL: runURL,
			Industry:   runIndustry,
			HQLocation: runHQLocation,
		}
		if runDataFile != "" {
			raw, err := os.ReadFile(runDataFile)
			if err != nil {
				return eris.Wrap(err, "read startup data file")
			}
			if err := json.Unmarshal(raw, &input.StartupData); err != nil {
				return eris.Wrap(err, "parse startup data file")
			}
		}
		if input.Company == "" {
			input.Company = "Target Company"
		}
		if input.Industry == "" {
			input.Industry = "Technology"
		}
		if input.HQLocation == "" {
			input.HQLocation = "Global"
		}

		jobID := uuid.New().String()
		env.Jobs.Create(jobID, input.Company, pipeline.TotalSteps())

		if err := env.Pipeline.Run(ctx, jobID, input); err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		job, ok := env.Jobs.Get(jobID)
		if !ok || job.Report == "" {
			return eris.New("run: job finished without a report")
		}

		if runOutput != "" {
			if err := os.WriteFile(runOutput, []byte(job.Report), 0o644); err != nil {
				return eris.Wrap(err, "write report")
			}
			zap.L().Info("report written", zap.String("path", runOutput))
			return nil
		}

		fmt.Println(job.Report)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runCompany, "company", "", "company name")
	runCmd.Flags().StringVar(&runURL, "url", "", "company website URL")
	runCmd.Flags().StringVar(&runIndustry, "industry", "", "industry label")
	runCmd.Flags().StringVar(&runHQLocation, "hq", "", "headquarters location")
	runCmd.Flags().StringVar(&runDataFile, "data", "", "path to a startup data JSON file")
	runCmd.Flags().StringVar(&runOutput, "out", "", "write the report to this file instead of stdout")
	rootCmd.AddCommand(runCmd)
}
