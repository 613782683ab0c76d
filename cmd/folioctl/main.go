// folioctl is the dashboard-in-a-terminal: it keeps a local draft of the
// site configuration, edits it, and synchronizes it with the folio API.
package main

import "github.com/joho/godotenv"

func main() {
	_ = godotenv.Load()
	Execute()
}
