package cli

import (
	"github.com/spf13/cobra"

	"github.com/bluecarto/geoloader/internal/pkg/model"
	loadFile "github.com/bluecarto/geoloader/pkg/lib/operation/load/file"
)

const loadFileShortDescription = `Load a dataset file into a table`

const loadFileLongDescription = `Command "load file"

Load a dataset file into a warehouse table.

Supported formats: shapefile, GeoPackage and newline
delimited GeoJSON. The table is created from the source
schema when it does not exist yet.

Spatial datasets are loaded in bulk jobs sized to the
daily load quota, non-spatial datasets are streamed in
chunks. An interrupted load can be resumed with the
"--start-at" flag.
`

func loadFileCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   `file <path> <table>`,
		Short: loadFileShortDescription,
		Long:  loadFileLongDescription,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := model.ParseTableID(args[1])
			if err != nil {
				return err
			}

			d, err := root.WarehouseDeps(cmd.Context(), table)
			if err != nil {
				return err
			}
			defer root.closeWarehouse(d)

			result, err := loadFile.Run(cmd.Context(), loadFile.Options{
				Path:             args[0],
				Layer:            root.options.GetString(`layer`),
				Table:            args[1],
				JobSize:          root.options.GetInt(`job-size`),
				StartAt:          root.options.GetInt(`start-at`),
				ValidateFeatures: root.options.GetBool(`validate`),
				StreamChunkSize:  root.options.GetInt(`chunk-size`),
			}, d)
			if err != nil {
				return err
			}

			root.logger.Infof(`Inserted %d of %d features.`, result.InsertedFeatures, result.InputFeatureCount)
			return nil
		},
	}

	cmd.Flags().SortFlags = true
	cmd.Flags().String(`layer`, ``, `layer of a multi-layer dataset, for example a GeoPackage table`)
	cmd.Flags().Int(`job-size`, 0, `features per load job, 0 fits the job count to the daily quota`)
	cmd.Flags().Int(`start-at`, 0, `resume an interrupted load from this feature index`)
	cmd.Flags().Bool(`validate`, true, `quarantine invalid features instead of failing the whole load`)
	cmd.Flags().Int(`chunk-size`, 0, `features per streaming chunk for non-spatial datasets`)
	return cmd
}
