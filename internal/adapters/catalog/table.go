package catalog

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
)

const (
	PlayersTableName = "epl_players"

	textInputFormat  = "org.apache.hadoop.mapred.TextInputFormat"
	textOutputFormat = "org.apache.hadoop.hive.ql.io.HiveIgnoreKeyTextOutputFormat"
	jsonSerDe        = "org.openx.data.jsonserde.JsonSerDe"
	externalTable    = "EXTERNAL_TABLE"
)

type Column struct {
	Name string
	Type string
}

// TableDefinition describes an external table over line-delimited JSON in object storage
type TableDefinition struct {
	Name                 string
	Columns              []Column
	Location             string
	InputFormat          string
	OutputFormat         string
	SerializationLibrary string
}

// PlayersTable is the schema of the uploaded player snapshot. location is the directory holding it.
func PlayersTable(location string) TableDefinition {
	return TableDefinition{
		Name: PlayersTableName,
		Columns: []Column{
			{Name: "PlayerID", Type: "int"},
			{Name: "FirstName", Type: "string"},
			{Name: "LastName", Type: "string"},
			{Name: "Team", Type: "string"},
			{Name: "Position", Type: "string"},
			{Name: "Nationality", Type: "string"},
			{Name: "Jersey", Type: "int"},
		},
		Location:             location,
		InputFormat:          textInputFormat,
		OutputFormat:         textOutputFormat,
		SerializationLibrary: jsonSerDe,
	}
}

func (t TableDefinition) toTableInput() *types.TableInput {
	columns := make([]types.Column, len(t.Columns))
	for i, column := range t.Columns {
		columns[i] = types.Column{
			Name: aws.String(column.Name),
			Type: aws.String(column.Type),
		}
	}

	return &types.TableInput{
		Name: aws.String(t.Name),
		StorageDescriptor: &types.StorageDescriptor{
			Columns:      columns,
			Location:     aws.String(t.Location),
			InputFormat:  aws.String(t.InputFormat),
			OutputFormat: aws.String(t.OutputFormat),
			SerdeInfo: &types.SerDeInfo{
				SerializationLibrary: aws.String(t.SerializationLibrary),
			},
		},
		TableType: aws.String(externalTable),
	}
}
