package main

import (
	"fmt"
	"io"
	"os"

	"github.com/limaJavier/examtabling/internal/export"
	"github.com/limaJavier/examtabling/internal/store"
	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newImportCmd(app *app) *cobra.Command {
	var (
		file        string
		coursesFile string
		roomsFile   string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load courses and rooms into the database",
		Long: `Replaces the stored catalog with the courses and rooms of an input document (--file), or with
CSV files (--courses and --rooms). A CSV import only replaces the tables it is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" && coursesFile == "" && roomsFile == "" {
				return fmt.Errorf("either --file or --courses/--rooms must be specified")
			}
			if file != "" && (coursesFile != "" || roomsFile != "") {
				return fmt.Errorf("--file cannot be combined with --courses/--rooms")
			}

			var (
				courses []model.Course
				rooms   []model.Room
			)
			if file != "" {
				input, err := model.InputFromFile(file)
				if err != nil {
					return err
				}
				courses, rooms = input.Courses, input.Rooms
			}
			if coursesFile != "" {
				parsed, err := readCSV(coursesFile, export.ReadCoursesCSV)
				if err != nil {
					return err
				}
				courses = parsed
			}
			if roomsFile != "" {
				parsed, err := readCSV(roomsFile, export.ReadRoomsCSV)
				if err != nil {
					return err
				}
				rooms = parsed
			}

			db, err := store.Open(cmd.Context(), app.config.Database.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if courses != nil {
				if err := db.ReplaceCourses(cmd.Context(), courses); err != nil {
					return err
				}
			}
			if rooms != nil {
				if err := db.ReplaceRooms(cmd.Context(), rooms); err != nil {
					return err
				}
			}

			app.logger.Info("catalog imported",
				zap.String("dsn", app.config.Database.DSN),
				zap.Int("courses", len(courses)),
				zap.Int("rooms", len(rooms)),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %v courses and %v rooms\n", len(courses), len(rooms))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "input document (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&coursesFile, "courses", "", "courses CSV file")
	cmd.Flags().StringVar(&roomsFile, "rooms", "", "rooms CSV file")
	return cmd
}

func readCSV[T any](file string, read func(io.Reader) ([]T, error)) ([]T, error) {
	handle, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("cannot open file: %w", err)
	}
	defer handle.Close()
	return read(handle)
}
