/*
Package cli provides command-line helpers shared by the throttlegate command:
typed errors for configuration and command failures, and signal handling for
graceful shutdown.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	sigChan := cli.WaitForShutdown()
	<-sigChan
	// begin graceful shutdown
*/
package cli
