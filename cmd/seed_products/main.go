// seed_products carga el catálogo del PDV desde un CSV (upsert por SKU) y asegura un usuario admin.
//
// Uso: go run ./cmd/seed_products -file catalogo.csv [-latin1] [-admin-email admin@loja.com -admin-password ...]
//
// Columnas (con encabezado): sku;barcode;name;description;category;price;cost_price;stock;min_stock;unit
// Se aceptan "," o ";" como separador y coma decimal ("19,99").
package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/pdv-api/internal/application/auth"
	"github.com/jhoicas/pdv-api/internal/application/usecase"
	"github.com/jhoicas/pdv-api/internal/domain/entity"
	"github.com/jhoicas/pdv-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pdv-api/pkg/config"
	"github.com/jhoicas/pdv-api/pkg/logger"
)

var columns = []string{"sku", "barcode", "name", "description", "category", "price", "cost_price", "stock", "min_stock", "unit"}

func main() {
	file := flag.String("file", "catalogo.csv", "CSV del catálogo")
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1 (exportado de planillas antiguas)")
	adminEmail := flag.String("admin-email", "", "email del admin a asegurar (opcional)")
	adminPassword := flag.String("admin-password", "", "password del admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	ctx := context.Background()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("abrir CSV")
	}
	defer f.Close()

	var r io.Reader = f
	if *latin1 {
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	rows, err := readCatalog(r)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	productUC := usecase.NewProductUseCase(postgres.NewProductRepository(pool))
	n, err := productUC.Import(ctx, "seed", rows)
	if err != nil {
		log.Fatal().Err(err).Int("applied", n).Msg("importar catálogo")
	}
	log.Info().Int("products", n).Str("file", *file).Msg("catálogo importado")

	if *adminEmail != "" {
		authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		})
		_, created, err := authUC.EnsureUser(ctx, *adminEmail, *adminPassword, "Administrador", entity.RoleAdmin)
		if err != nil {
			log.Fatal().Err(err).Msg("asegurar admin")
		}
		log.Info().Str("email", *adminEmail).Bool("created", created).Msg("usuario admin")
	}
}

// readCatalog detecta el separador por la primera línea y mapea columnas por nombre.
func readCatalog(r io.Reader) ([]usecase.ImportRow, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}
	cr := csv.NewReader(br)
	cr.Comma = ','
	if firstLine := strings.SplitN(string(head), "\n", 2)[0]; strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		cr.Comma = ';'
	}
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range []string{"sku", "name", "price"} {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("falta la columna %q (esperadas: %s)", c, strings.Join(columns, ","))
		}
	}

	var out []usecase.ImportRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		row := usecase.ImportRow{
			SKU:         get("sku"),
			Barcode:     get("barcode"),
			Name:        get("name"),
			Description: get("description"),
			Category:    get("category"),
			Unit:        get("unit"),
		}
		if row.Price, err = parseDecimal(get("price")); err != nil {
			return nil, fmt.Errorf("línea %d: price: %w", line, err)
		}
		if row.CostPrice, err = parseDecimal(get("cost_price")); err != nil {
			return nil, fmt.Errorf("línea %d: cost_price: %w", line, err)
		}
		if row.Stock, err = parseInt(get("stock")); err != nil {
			return nil, fmt.Errorf("línea %d: stock: %w", line, err)
		}
		if row.MinStock, err = parseInt(get("min_stock")); err != nil {
			return nil, fmt.Errorf("línea %d: min_stock: %w", line, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	}
	return decimal.NewFromString(s)
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
