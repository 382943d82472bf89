// invoicectl tareas programadas y utilidades de desarrollo del servicio de facturación.
//
// Uso:
//
//	invoicectl sweep-overdue
//	invoicectl remind
//	invoicectl token --user admin-1 --role admin
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// .env opcional; las variables ya definidas en el entorno no se pisan.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "invoicectl: %v\n", err)
		os.Exit(1)
	}
}
