package solidhdf5

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Store measurement arrays in HDF5 containers"
	MsgStoreShort      = "Append a dataset to a container"
	MsgLoadShort       = "Load one dataset from a container"
	MsgShowShort       = "List samples and datasets in a container"
	MsgGenConfigShort  = "Print the default configuration"
	MsgTopicsShort     = "Display available documentation topics"
	MsgTopicsLong      = "Display a list of all available help topics that provide additional documentation beyond command help."
	MsgCompletionShort = "Generate shell completion script"
	MsgVersionShort    = "Print version information"

	// Status messages
	MsgVersionFormat   = "solidhdf5 version %s\n  commit: %s\n  built:  %s\n"
	MsgArrayWritten    = "Wrote %s (%s) to %s"
	MsgConfigWritten   = "Wrote configuration to %s\n"
	MsgNothingToRender = "Nothing stored."

	// Error messages
	MsgErrNoInput      = "--input is required unless --manifest is given"
	MsgErrConfigExists = "config file %s already exists"
	MsgErrDataDir      = "failed to create data directory %s"
	MsgErrWriteConfig  = "failed to write config file %s"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat   = "Output format: auto, term, text or json"
	MsgFlagConfig   = "Config file (default $XDG_CONFIG_HOME/solidhdf5/config.toml)"
	MsgFlagInput    = "Array file to store (.csv, .tsv, .json, .toml, .yaml)"
	MsgFlagManifest = "Store every dataset listed in a TOML or YAML manifest"
	MsgFlagProject  = "Project attribute of a new sample"
	MsgFlagMaterial = "Material attribute of a new sample"
	MsgFlagMethod   = "Measurement method"
	MsgFlagAxes     = "Axis names, e.g. \"[R,G,B]\""
	MsgFlagDate     = "Acquisition date as YYYYMMDD (default today)"
	MsgFlagTime     = "Acquisition time as HH:MM (default now)"
	MsgFlagDType    = "Element type of the stored array (overrides store.dtype)"
	MsgFlagOutput   = "Write the values to a CSV file instead of printing them"
	MsgFlagWrite    = "Write the config file instead of printing it"
	MsgFlagResolved = "Print the effective settings"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/store-long.txt
	msgStoreLongRaw string
	MsgStoreLong    = strings.TrimSpace(msgStoreLongRaw)

	//go:embed msgs/store-example.txt
	msgStoreExampleRaw string
	MsgStoreExample    = strings.TrimRight(msgStoreExampleRaw, "\n")

	//go:embed msgs/load-long.txt
	msgLoadLongRaw string
	MsgLoadLong    = strings.TrimSpace(msgLoadLongRaw)

	//go:embed msgs/load-example.txt
	msgLoadExampleRaw string
	MsgLoadExample    = strings.TrimRight(msgLoadExampleRaw, "\n")

	//go:embed msgs/show-long.txt
	msgShowLongRaw string
	MsgShowLong    = strings.TrimSpace(msgShowLongRaw)

	//go:embed msgs/show-example.txt
	msgShowExampleRaw string
	MsgShowExample    = strings.TrimRight(msgShowExampleRaw, "\n")

	//go:embed msgs/genconfig-long.txt
	msgGenConfigLongRaw string
	MsgGenConfigLong    = strings.TrimSpace(msgGenConfigLongRaw)

	//go:embed msgs/genconfig-example.txt
	msgGenConfigExampleRaw string
	MsgGenConfigExample    = strings.TrimRight(msgGenConfigExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
