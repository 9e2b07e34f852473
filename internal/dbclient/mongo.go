package dbclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"prodexport/internal/domain"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoDatabase is a connected client plus the database it was opened for.
type MongoDatabase struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Close disconnects the client.
func (m *MongoDatabase) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// ConnectMongo connects to MongoDB and pings the primary.
func ConnectMongo(ctx context.Context, conn *domain.DatabaseConnection, password string) (*MongoDatabase, error) {
	uri := buildMongoURI(conn, password)
	dbName := conn.Database
	if dbName == "" {
		dbName = databaseFromURI(uri)
	}

	slog.Debug("connecting to mongodb", "uri", maskPassword(uri, password), "database", dbName)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoDatabase{Client: client, DB: client.Database(dbName)}, nil
}

// buildMongoURI uses Host directly when it already is a connection string
// (Atlas mongodb+srv:// or standard mongodb://), otherwise builds one from
// host:port.
func buildMongoURI(conn *domain.DatabaseConnection, password string) string {
	if strings.HasPrefix(conn.Host, "mongodb+srv://") || strings.HasPrefix(conn.Host, "mongodb://") {
		uri := conn.Host
		if password != "" {
			uri = strings.ReplaceAll(uri, "<password>", url.QueryEscape(password))
		}
		return uri
	}

	port := conn.Port
	if port == 0 {
		port = 27017
	}
	u := url.URL{Scheme: "mongodb", Host: fmt.Sprintf("%s:%d", conn.Host, port)}
	if conn.Username != "" {
		u.User = url.UserPassword(conn.Username, password)
	}
	if len(conn.Options) > 0 {
		q := url.Values{}
		for k, v := range conn.Options {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// databaseFromURI extracts the path database of a mongodb URI, "test" if none.
func databaseFromURI(uri string) string {
	rest := uri
	for _, prefix := range []string{"mongodb+srv://", "mongodb://"} {
		rest = strings.TrimPrefix(rest, prefix)
	}
	if at := strings.LastIndex(rest, "@"); at != -1 {
		rest = rest[at+1:]
	}
	if slash := strings.Index(rest, "/"); slash != -1 {
		path := rest[slash+1:]
		if q := strings.Index(path, "?"); q != -1 {
			path = path[:q]
		}
		if path != "" {
			return path
		}
	}
	return "test"
}

func maskPassword(uri, password string) string {
	if password == "" {
		return uri
	}
	uri = strings.ReplaceAll(uri, url.QueryEscape(password), "***")
	return strings.ReplaceAll(uri, password, "***")
}
