package main

import cryptoRand "crypto/rand"
import "encoding/base64"
import "context"
import "os"
import "sync"
import "time"

import "github.com/sirgallo/raftclient/pkg/connpool"
import "github.com/sirgallo/raftclient/pkg/logger"
import "github.com/sirgallo/raftclient/pkg/raftclient"
import "github.com/sirgallo/raftclient/pkg/transport"
import "github.com/sirgallo/raftclient/pkg/utils"


const NAME = "Raft Client"
var Log = clog.NewCustomLog(NAME)

const STRING_LENGTH = 30
const NUM_CLIENTS = 16


/*
	main:
		fans out NUM_CLIENTS goroutines, each repeatedly sending a write with
		a random payload through one shared raftclient.Client
*/

func main() {
	genRandomString := func(length int) (string, error) {
		bytesNeeded := (length * 6) / 8
		randomBytes := make([]byte, bytesNeeded)

		_, readErr := cryptoRand.Read(randomBytes)
		if readErr != nil { return utils.GetZero[string](), readErr }

		randomString := base64.RawURLEncoding.EncodeToString(randomBytes)
		return randomString[:length], nil
	}

	hostname, hostErr := os.Hostname()
	if hostErr != nil { Log.Fatal("unable to get hostname") }
	Log.Info("starting", NAME, "from host", hostname)

	pool := connpool.NewConnectionPool(connpool.ConnectionPoolOpts{MaxConn: 10})

	grpcTransport := transport.NewGRPCTransport(transport.GRPCTransportOpts{
		Pool: pool,
		Port: 54330,
	})

	client := raftclient.NewClient(raftclient.ClientOpts{
		GroupID: "raftgroup-1",
		Transport: grpcTransport,
		Options: raftclient.OptionsFromEnv(),
	})

	var clientWG sync.WaitGroup

	for range make([]int, NUM_CLIENTS) {
		clientWG.Add(1)

		go func() {
			defer clientWG.Done()

			for {
				randString, randErr := genRandomString(STRING_LENGTH)
				if randErr != nil { Log.Fatal("failed to generate random string:", randErr.Error()) }

				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				reply, sendErr := client.Write(ctx, []byte(randString))
				cancel()

				if sendErr != nil {
					Log.Warn("write failed:", sendErr.Error())
					continue
				}

				Log.Debug("reply:", reply.String())
			}
		}()
	}

	clientWG.Wait()
	select{}
}
