package firebase

import (
	"context"
	"os"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app, its auth client and, when a
// storage bucket is configured, the bucket used for uploads.
type App struct {
	FirebaseApp *firebase.App
	AuthClient  *auth.Client
	Bucket      *gcs.BucketHandle
	BucketName  string
}

// InitFirebase initializes the Firebase application and authentication client
func InitFirebase(ctx context.Context, credentialsPath, storageBucket string) (*App, error) {
	if credentialsPath == "" {
		return nil, errors.New("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, errors.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)
	var conf *firebase.Config
	if storageBucket != "" {
		conf = &firebase.Config{StorageBucket: storageBucket}
	}

	firebaseApp, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, errors.Wrap(err, "initialize firebase app")
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get firebase auth client")
	}

	app := &App{FirebaseApp: firebaseApp, AuthClient: authClient}
	if storageBucket == "" {
		return app, nil
	}

	storageClient, err := firebaseApp.Storage(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get firebase storage client")
	}
	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		return nil, errors.Wrap(err, "open storage bucket")
	}
	app.Bucket = bucket
	app.BucketName = storageBucket
	return app, nil
}
