// Package packsmith manages the custom model data of a Minecraft resource pack.
//
// # Overview
//
// Minecraft selects an alternative model for an item through the item's
// custom_model_data string. packsmith keeps the three kinds of records that
// make that work in step with each other:
//
//   - item files (assets/minecraft/items/<material>.json) with one select
//     case per custom model
//   - model files (assets/minecraft/models/item/<name>.json)
//   - textures (assets/minecraft/textures/item/<name>.png, or a directory
//     of layer textures for 3D models) and optional animation metadata
//
// # Architecture
//
//	┌──────────────────┐      ┌──────────────────┐
//	│  CLI (cobra)     │      │  runner          │
//	│  add/extend/...  │      │  GitHub issues   │
//	└────────┬─────────┘      └────────┬─────────┘
//	         │                         │
//	┌────────▼─────────────────────────▼────────┐
//	│  pack service                             │
//	│  add 2D / add 3D / extend                 │
//	└────────┬──────────────────────────────────┘
//	         │
//	┌────────▼─────────┐      ┌──────────────────┐
//	│  JSON store      │      │  gallery, zip,   │
//	│  schema, paths   │◄─────┤  metadata, check │
//	└──────────────────┘      └──────────────────┘
//
// # Usage
//
// Add a 2D model and register it on two materials:
//
//	packsmith add model ruby_sword.png --materials diamond_sword,iron_sword
//
// Add an animated model:
//
//	packsmith add model flame.png --materials blaze_rod --frametime 2 --parent generated
//
// Add a 3D model from a Blockbench export and its layers:
//
//	packsmith add model3d lamp.json 0.png 1.png --name desk_lamp --materials torch
//
// Register an existing model on more materials:
//
//	packsmith extend ruby_sword --materials golden_sword
//
// Build the release artifacts:
//
//	packsmith generate
//
// Audit the pack and remove repeated cases:
//
//	packsmith check --fix
//
// # GitHub Actions
//
// The runner subcommands turn a model request issue into a pull request:
//
//	packsmith runner process-issue --type model --create-pr --notify
//
// The issue number and body come from --issue/--body or from ISSUE_NUMBER
// and ISSUE_BODY. GITHUB_TOKEN, GITHUB_REPOSITORY, GITHUB_OUTPUT and PR_BRANCH
// are read as the runner provides them.
//
// # Configuration
//
// Configuration can be provided via:
//   - YAML file (packsmith.yaml, configs/packsmith.yaml)
//   - Environment variables (PACKSMITH_ prefix)
//   - .env file
//
// Example configuration:
//
//	pack:
//	  root: .
//	  name: OfroPack
//	preview:
//	  size: 256
//	github:
//	  base_branch: main
//
// # Development
//
// Run tests:
//
//	go test ./...
//
// Build the binary:
//
//	go build -o packsmith ./cmd/packsmith
package packsmith
