// Package bootstrap sequences one complete start-up of a module runtime:
// acquire the engine, install bundled packages, run the deprecated prelude,
// fetch every configured module, then synthesize and execute the import code
// that hands control to the kickoff snippet. Stages run strictly in order and
// the first failure aborts the rest with a StageError naming the stage.
package bootstrap
