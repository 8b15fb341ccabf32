/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/tomoncle/paybook/config"
	"github.com/tomoncle/paybook/dao"
	"github.com/tomoncle/paybook/database"
	"github.com/tomoncle/paybook/dto"
	_ "github.com/tomoncle/paybook/entity"
	"github.com/tomoncle/paybook/fixtures"
	"github.com/tomoncle/paybook/service"
	"github.com/tomoncle/paybook/utils"
)

var logger = utils.NewLogger("paybook")

func main() {
	configPath := flag.String("config", "configs", "config file or directory holding config.yaml")
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// stdout carries the JSON results only
	utils.ConfigureOutput(os.Stderr)
	utils.ConfigureConsoleLogFormat(cfg.Log.Format)
	utils.ConfigureLogLevel(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flag.Arg(0), flag.Args()[1:]); err != nil {
		logger.WithError(err).Error("command failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, command string, args []string) error {
	migrate := command == "migrate" || cfg.Database.DataMigrateConfig.EnableMigrateOnStartup
	db, err := database.InitDatabaseWithOptions(ctx, &cfg.Database, migrate)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.WithError(err).Warn("close database")
		}
	}()

	switch command {
	case "migrate":
		return nil
	case "seed":
		fs := flag.NewFlagSet("seed", flag.ExitOnError)
		file := fs.String("file", cfg.Database.DataInitConfig.FixtureFile, "YAML fixture file")
		sqlOnly := fs.Bool("sql", false, "run the SQL seed files instead of a fixture file")
		sqlDir := fs.String("sql-dir", cfg.Database.DataInitConfig.Filepath, "root of the SQL seed files")
		env := fs.String("env", cfg.Database.DataInitConfig.Environment, "environment whose SQL seed files run after common/")
		_ = fs.Parse(args)
		if *sqlOnly || *file == "" {
			return database.InitDataWithSQL(ctx, *sqlDir, *env)
		}
		set, err := fixtures.LoadFile(*file)
		if err != nil {
			return err
		}
		res, err := set.Apply(ctx, db)
		if err != nil {
			return err
		}
		return printJSON(res)
	case "user":
		return runUser(ctx, service.NewUserService(db), args)
	case "report":
		return runReport(ctx, dao.NewUserDao(db), args)
	case "health":
		return printJSON(database.GetHealthStatus(ctx))
	}
	printUsage()
	return fmt.Errorf("unknown command %q", command)
}

func runUser(ctx context.Context, users *service.UserService, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: paybook user get|delete <id>")
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[1])
	}
	switch args[0] {
	case "get":
		user, ok, err := users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user %d not found", id)
		}
		return printJSON(user)
	case "delete":
		deleted, err := users.Delete(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"id": id, "deleted": deleted})
	}
	return fmt.Errorf("unknown user command %q", args[0])
}

func runReport(ctx context.Context, reports *dao.UserDao, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: paybook report companies|above-average|average|payments")
	}
	switch args[0] {
	case "companies":
		rows, err := reports.FindCompanyAveragePayments(ctx)
		if err != nil {
			return err
		}
		return printJSON(rows)
	case "above-average":
		rows, err := reports.FindUsersAboveAveragePayment(ctx)
		if err != nil {
			return err
		}
		return printJSON(rows)
	case "average":
		fs := flag.NewFlagSet("average", flag.ExitOnError)
		first := fs.String("first", "", "receiver first name")
		last := fs.String("last", "", "receiver last name")
		_ = fs.Parse(args[1:])

		var filter dto.PaymentFilter
		if *first != "" {
			filter = filter.WithFirstName(*first)
		}
		if *last != "" {
			filter = filter.WithLastName(*last)
		}
		avg, ok, err := reports.FindAveragePaymentAmount(ctx, filter)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"average": avg, "found": ok})
	case "payments":
		if len(args) != 2 {
			return fmt.Errorf("usage: paybook report payments <company>")
		}
		payments, err := reports.FindAllPaymentsByCompanyName(ctx, args[1])
		if err != nil {
			return err
		}
		return printJSON(payments)
	}
	return fmt.Errorf("unknown report %q", args[0])
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: paybook [-config path] <command> [args]

Commands:
  migrate                      create the schema
  seed [-file f.yaml] [-sql [-sql-dir d] [-env e]]
                              import fixtures or run the SQL seed files
  user get|delete <id>         show or remove a user
  report companies             average payment per company
  report above-average         users paid above the overall average
  report average [-first n] [-last n]
  report payments <company>    payments received by a company's employees
  health                       database health status
`)
}
