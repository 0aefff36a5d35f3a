// token emite un JWT firmado con JWT_SECRET para operar la API (la autenticación de usuarios vive fuera de este servicio).
//
// Uso: go run ./cmd/token -user cajero-01 -role cajero [-minutes 480]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/pkg/config"
	"github.com/AstralMoonlight/torn/pkg/jwt"
)

func main() {
	userID := flag.String("user", "", "ID del usuario (claim user_id)")
	role := flag.String("role", string(entity.RoleCashier), "admin | supervisor | cajero | bodeguero")
	minutes := flag.Int("minutes", 0, "vigencia en minutos (0 = JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "falta -user")
		os.Exit(2)
	}
	if len(entity.Role(*role).Capabilities()) == 0 {
		fmt.Fprintf(os.Stderr, "rol desconocido: %q\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}
	token, err := jwt.Generate(cfg.JWT.Secret, *userID, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
