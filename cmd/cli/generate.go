package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/limaJavier/examtabling/internal/export"
	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var validFormats = []string{"json", "csv", "xlsx"}

func newGenerateCmd(app *app) *cobra.Command {
	var (
		file       string
		format     string
		out        string
		department string
		verify     bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a schedule from an input document",
		Long: `Reads courses, rooms and constraints from a JSON or YAML document and prints the schedule.
Conflicts are reported but do not fail the command. With --verify the exit status is 2 when the
schedule breaks an invariant.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if file == "" {
				return fmt.Errorf("an input file must be specified")
			}
			if !lo.Contains(validFormats, format) {
				return fmt.Errorf("%v is not a valid format, expected one of %v", format, validFormats)
			}
			if format == "xlsx" && out == "" {
				return fmt.Errorf("xlsx output needs --out")
			}

			input, err := model.InputFromFile(file)
			if err != nil {
				return err
			}
			// An explicit flag wins over the document
			algorithm := input.Algorithm
			if cmd.Flags().Changed("algorithm") {
				algorithm = model.ParseAlgorithm(app.config.Scheduler.Algorithm)
			}

			allocator, err := model.NewRoomAllocator(model.RoomPolicy(app.config.Scheduler.RoomPolicy))
			if err != nil {
				return err
			}
			scheduler := model.NewScheduler(allocator, app.config.Scheduler.SearchOptions(), app.logger)
			schedule, err := scheduler.GenerateSchedule(cmd.Context(), input.Courses, input.Rooms, input.Constraints, algorithm)
			if err != nil {
				return err
			}

			if verify {
				if err := model.Verify(schedule, input.Courses, input.Rooms, model.BuildConflictGraph(input.Courses)); err != nil {
					return exitError{code: exitVerification, err: fmt.Errorf("verification failed: %w", err)}
				}
			}

			var buffer bytes.Buffer
			if err := render(&buffer, format, input.Courses, schedule, department); err != nil {
				return err
			}
			if out == "" {
				_, err := io.Copy(cmd.OutOrStdout(), &buffer)
				return err
			}
			if err := os.WriteFile(out, buffer.Bytes(), 0o644); err != nil {
				return fmt.Errorf("cannot write output file: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the input document (.json, .yaml or .yml)")
	cmd.Flags().String("algorithm", "graph-coloring", `scheduling algorithm ("graph-coloring", "csp", "genetic")`)
	cmd.Flags().String("room-policy", "first-fit", `room policy ("first-fit", "matching")`)
	cmd.Flags().Duration("timeout", model.DefaultSearchOptions().Timeout, "search timeout of csp and genetic")
	cmd.Flags().StringVar(&format, "format", "json", `output format ("json", "csv", "xlsx")`)
	cmd.Flags().StringVar(&out, "out", "", "output file; standard output when empty")
	cmd.Flags().StringVar(&department, "department", "", "keep only the exams of one department (csv and xlsx)")
	cmd.Flags().BoolVar(&verify, "verify", false, "check the schedule invariants before writing it")
	_ = app.viper.BindPFlag("scheduler.algorithm", cmd.Flags().Lookup("algorithm"))
	_ = app.viper.BindPFlag("scheduler.room_policy", cmd.Flags().Lookup("room-policy"))
	_ = app.viper.BindPFlag("scheduler.timeout", cmd.Flags().Lookup("timeout"))

	return cmd
}

func render(writer io.Writer, format string, courses []model.Course, schedule model.Schedule, department string) error {
	switch format {
	case "csv":
		return export.WriteCSV(writer, export.FilterDepartment(export.Rows(courses, schedule), department))
	case "xlsx":
		return export.WriteXLSX(writer, export.FilterDepartment(export.Rows(courses, schedule), department), schedule.Conflicts)
	default:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(schedule)
	}
}
