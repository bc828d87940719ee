// cmd/main.go
package main

import (
	"secure-banking-api/app"
)

// @title           Secure Banking API
// @version         1.0
// @description     Registration, login and account ledger operations behind JWT authentication.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
