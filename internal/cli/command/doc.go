// Package command defines the scenelink-cli commands on urfave/cli/v2.
//
// Most commands are thin clients of the scenelink-server admin API
// (probe, health, mirror, producer). inspect and config server validate
// work offline on local files. Every command writes to the app's Writer so
// tests can capture output.
package command
