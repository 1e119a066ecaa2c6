// taskctl is a command-line client for the task service.
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/mahiraziiz/primetrade.ai/client"
	"github.com/mahiraziiz/primetrade.ai/internal/domain/models"
)

const usage = `usage: taskctl <command> [flags]

commands:
  register   -username -email -password -fullname
  login      -username [-email] -password
  logout
  whoami
  list       [-status pending|completed] [-page N] [-limit N]
  add        -title -description
  show       <task-id>
  done       <task-id>
  update     <task-id> [-title] [-description] [-status]
  rm         <task-id>

flags:
  -api <url>      API base URL (default TASK_API_URL or http://localhost:8080/api/v1)
  -config <dir>   session directory (default ~/.config/taskctl)
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(errOut, usage)
		return 2
	}

	command := args[0]
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(errOut)

	apiURL := fs.String("api", "", "API base URL")
	configDir := fs.String("config", "", "session directory")

	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	fullName := fs.String("fullname", "", "full name")
	title := fs.String("title", "", "task title")
	description := fs.String("description", "", "task description")
	status := fs.String("status", "", "task status")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 10, "page size")

	// Positional arguments (task ids) come before flags.
	rest := args[1:]
	var taskID string
	if len(rest) > 0 && rest[0] != "" && rest[0][0] != '-' {
		taskID = rest[0]
		rest = rest[1:]
	}
	if err := fs.Parse(rest); err != nil {
		return 2
	}

	store, err := client.NewSessionStore(*configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 1
	}
	c := client.New(*apiURL, store)

	switch command {
	case "register":
		result, err := client.NewAuthSession(c, store).Register(&models.RegisterRequest{
			Username: *username,
			Email:    *email,
			Password: *password,
			FullName: *fullName,
		})
		return printResult(out, errOut, result, err)

	case "login":
		result, err := client.NewAuthSession(c, store).Login(&models.LoginRequest{
			Username: *username,
			Email:    *email,
			Password: *password,
		})
		return printResult(out, errOut, result, err)

	case "logout":
		result, err := client.NewAuthSession(c, store).Logout()
		return printResult(out, errOut, result, err)

	case "whoami":
		session := client.NewAuthSession(c, store)
		if !session.IsAuthenticated() {
			fmt.Fprintln(errOut, "error: not logged in")
			return 1
		}
		user := session.User()
		fmt.Fprintf(out, "%s (%s) role=%s id=%s\n", user.Username, user.Email, user.Role, user.ID)
		return 0

	case "list":
		envelope, err := c.Tasks(*page, *limit, *status)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return 1
		}
		if envelope.StatusCode >= http.StatusBadRequest {
			fmt.Fprintf(errOut, "error: %s\n", envelope.Message)
			return 1
		}
		var pageData models.TaskPage
		if err := envelope.DecodeData(&pageData); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return 1
		}
		for _, task := range pageData.Tasks {
			printTask(out, &task)
		}
		fmt.Fprintf(out, "page %d/%d tasks, %d total\n", pageData.Page, len(pageData.Tasks), pageData.Total)
		return 0

	case "add":
		envelope, err := c.CreateTask(&models.CreateTaskRequest{
			Title:       *title,
			Description: *description,
		})
		return printTaskEnvelope(out, errOut, envelope, err)

	case "show":
		if taskID == "" {
			fmt.Fprintln(errOut, "error: task id is required")
			return 2
		}
		envelope, err := c.Task(taskID)
		return printTaskEnvelope(out, errOut, envelope, err)

	case "done":
		if taskID == "" {
			fmt.Fprintln(errOut, "error: task id is required")
			return 2
		}
		completed := models.StatusCompleted
		envelope, err := c.UpdateTask(taskID, &models.UpdateTaskRequest{Status: &completed})
		return printTaskEnvelope(out, errOut, envelope, err)

	case "update":
		if taskID == "" {
			fmt.Fprintln(errOut, "error: task id is required")
			return 2
		}
		req := &models.UpdateTaskRequest{}
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "title":
				req.Title = title
			case "description":
				req.Description = description
			case "status":
				req.Status = status
			}
		})
		envelope, err := c.UpdateTask(taskID, req)
		return printTaskEnvelope(out, errOut, envelope, err)

	case "rm":
		if taskID == "" {
			fmt.Fprintln(errOut, "error: task id is required")
			return 2
		}
		envelope, err := c.DeleteTask(taskID)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return 1
		}
		if envelope.StatusCode >= http.StatusBadRequest {
			fmt.Fprintf(errOut, "error: %s\n", envelope.Message)
			return 1
		}
		fmt.Fprintln(out, envelope.Message)
		return 0

	default:
		fmt.Fprintf(errOut, "error: unknown command: %s\n", command)
		fmt.Fprint(errOut, usage)
		return 2
	}
}

func printResult(out, errOut io.Writer, result client.Result, err error) int {
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 1
	}
	if !result.Success {
		fmt.Fprintf(errOut, "error: %s\n", result.Message)
		return 1
	}
	fmt.Fprintln(out, result.Message)
	return 0
}

func printTaskEnvelope(out, errOut io.Writer, envelope *client.Envelope, err error) int {
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 1
	}
	if envelope.StatusCode >= http.StatusBadRequest {
		fmt.Fprintf(errOut, "error: %s\n", envelope.Message)
		return 1
	}
	task := &models.Task{}
	if err := envelope.DecodeData(task); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 1
	}
	printTask(out, task)
	return 0
}

func printTask(out io.Writer, task *models.Task) {
	marker := " "
	if task.Status == models.StatusCompleted {
		marker = "x"
	}
	fmt.Fprintf(out, "[%s] %s  %s\n      %s\n", marker, task.ID, task.Title, task.Description)
}
