// Package sqltest starts a temporary in-memory MySQL server for tests that
// need real DDL and SQL semantics without an external database.
package sqltest

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	sqle "github.com/dolthub/go-mysql-server"
	"github.com/dolthub/go-mysql-server/memory"
	"github.com/dolthub/go-mysql-server/server"
	"github.com/dolthub/go-mysql-server/sql"
	"github.com/dolthub/go-mysql-server/sql/mysql_db"
	"github.com/dolthub/vitess/go/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DatabaseName is the schema every test server starts with.
const DatabaseName = "databridge_test"

func freePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}

// Start launches an in-memory MySQL server and opens a GORM connection to it.
// The server and connection are torn down with the test.
func Start(t *testing.T) *gorm.DB {
	t.Helper()

	port, err := freePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	db := memory.NewDatabase(DatabaseName)
	provider := memory.NewDBProvider(db)
	engine := sqle.NewDefault(provider)

	config := server.Config{
		Protocol: "tcp",
		Address:  fmt.Sprintf("localhost:%d", port),
	}
	sessionBuilder := func(ctx context.Context, conn *mysql.Conn, addr string) (sql.Session, error) {
		host := ""
		user := ""
		if mysqlConnectionUser, ok := conn.UserData.(mysql_db.MysqlConnectionUser); ok {
			host = mysqlConnectionUser.Host
			user = mysqlConnectionUser.User
		}
		client := sql.Client{Address: host, User: user, Capabilities: conn.Capabilities}
		baseSession := sql.NewBaseSessionWithClientServer(addr, client, conn.ConnectionID)
		return memory.NewSession(baseSession, provider), nil
	}
	s, err := server.NewServer(config, engine, sessionBuilder, nil)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	serverCtx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = s.Start()
	}()
	go func() {
		<-serverCtx.Done()
		_ = s.Close()
	}()
	t.Cleanup(cancel)

	waitReady(t, port)

	dsn := fmt.Sprintf("root@tcp(localhost:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local", port, DatabaseName)
	gdb, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm connection: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func waitReady(t *testing.T, port int) {
	t.Helper()

	readyCtx, readyCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer readyCancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-readyCtx.Done():
			t.Fatalf("server failed to start within timeout: %v", readyCtx.Err())
		case <-ticker.C:
			conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", port), 100*time.Millisecond)
			if err == nil {
				conn.Close()
				return
			}
		}
	}
}
